// Package service implements the account operations behind the HTTP API:
// admin bootstrap, login and admin-only user creation.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"locationShare/internal/auth"
	"locationShare/internal/logging"
	"locationShare/models"
	"locationShare/repository"
)

// Accounts owns the credential rules on top of a user repository.
type Accounts struct {
	users repository.UserRepositoryI
	cost  int

	dummyOnce sync.Once
	dummyHash string
}

// NewAccounts returns the account service. cost is the bcrypt work factor.
func NewAccounts(users repository.UserRepositoryI, cost int) *Accounts {
	if cost <= 0 {
		cost = auth.DefaultCost
	}
	return &Accounts{users: users, cost: cost}
}

// AdminExists reports whether the store already has an admin.
func (a *Accounts) AdminExists(ctx context.Context) (bool, error) {
	ok, err := a.users.AdminExists(ctx)
	if err != nil {
		return false, storeErr("check admin", err)
	}
	return ok, nil
}

// Bootstrap creates the first admin. Once an admin exists every call fails
// with ErrAdminExists, whatever credentials are supplied.
func (a *Accounts) Bootstrap(ctx context.Context, username, password string) (*models.User, error) {
	exists, err := a.AdminExists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminExists
	}
	if missing(username, password) {
		return nil, ErrMissingFields
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	hash, err := auth.HashPassword(password, a.cost)
	if err != nil {
		return nil, err
	}
	u, err := a.users.CreateAdmin(ctx, username, hash)
	if errors.Is(err, repository.ErrAdminExists) {
		return nil, ErrAdminExists
	}
	if err != nil {
		return nil, storeErr("create admin", err)
	}
	logging.Ctx(ctx).Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("admin bootstrapped")
	return u, nil
}

// Login verifies credentials. Unknown users and wrong passwords both yield
// ErrInvalidCredentials, and both pay for one bcrypt comparison.
func (a *Accounts) Login(ctx context.Context, username, password string) (*models.User, error) {
	u, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if u == nil {
		auth.CheckPassword(a.fakeHash(), password)
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// CreateUser adds a user with role "user". Only an admin caller may do so;
// the caller's own session is not affected.
func (a *Accounts) CreateUser(ctx context.Context, caller *auth.Principal, username, password string) (*models.User, error) {
	if caller == nil || caller.Role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}
	if missing(username, password) {
		return nil, ErrMissingFields
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	hash, err := auth.HashPassword(password, a.cost)
	if err != nil {
		return nil, err
	}
	u, err := a.users.Create(ctx, username, hash, models.RoleUser)
	if err != nil {
		return nil, storeErr("create user", err)
	}
	logging.Ctx(ctx).Info().Int64("user_id", u.ID).Str("username", u.Username).Str("created_by", caller.Username).Msg("user created")
	return u, nil
}

// ListUsers returns a page of accounts. Only an admin caller may list them.
func (a *Accounts) ListUsers(ctx context.Context, caller *auth.Principal, limit, offset int) ([]models.User, error) {
	if caller == nil || caller.Role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}
	users, err := a.users.List(ctx, limit, offset)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// PrincipalFor returns the session payload for u.
func PrincipalFor(u *models.User) auth.Principal {
	return auth.Principal{ID: u.ID, Username: u.Username, Role: u.Role}
}

func (a *Accounts) fakeHash() string {
	a.dummyOnce.Do(func() {
		// A hash of a random token; no password ever matches it.
		token, _ := auth.NewSessionToken()
		a.dummyHash, _ = auth.HashPassword(token, a.cost)
	})
	return a.dummyHash
}

func missing(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}
