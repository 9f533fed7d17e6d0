package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"locationShare/internal/auth"
	"locationShare/internal/testutil"
	"locationShare/models"
	"locationShare/repository"
)

func newTestAccounts(t *testing.T) *Accounts {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, t.Name())
	return NewAccounts(repository.NewUserRepository(d), 4)
}

var adminCaller = &auth.Principal{ID: 1, Username: "root", Role: models.RoleAdmin}

func TestBootstrap_OnlyOnce(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()

	if ok, err := a.AdminExists(ctx); err != nil || ok {
		t.Fatalf("AdminExists on empty store = %v, %v", ok, err)
	}
	u, err := a.Bootstrap(ctx, "root", "pw")
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if u.Role != models.RoleAdmin || u.Username != "root" {
		t.Fatalf("unexpected admin: %+v", u)
	}
	if ok, _ := a.AdminExists(ctx); !ok {
		t.Fatalf("AdminExists should be true after bootstrap")
	}

	// A second bootstrap fails even with different or empty credentials.
	for _, creds := range [][2]string{{"other", "pw2"}, {"", ""}} {
		if _, err := a.Bootstrap(ctx, creds[0], creds[1]); !errors.Is(err, ErrAdminExists) {
			t.Fatalf("Bootstrap(%q) err = %v, want ErrAdminExists", creds[0], err)
		}
	}
}

func TestBootstrap_MissingFields(t *testing.T) {
	a := newTestAccounts(t)
	cases := []struct{ user, pass string }{
		{"", "pw"},
		{"root", ""},
		{"  ", "pw"},
	}
	for _, c := range cases {
		if _, err := a.Bootstrap(context.Background(), c.user, c.pass); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("Bootstrap(%q,%q) err = %v, want ErrMissingFields", c.user, c.pass, err)
		}
	}
	if ok, _ := a.AdminExists(context.Background()); ok {
		t.Fatalf("no admin should have been created")
	}
}

func TestPasswordTooLong(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()
	long := strings.Repeat("p", 80)

	if _, err := a.Bootstrap(ctx, "root", long); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("Bootstrap err = %v, want ErrPasswordTooLong", err)
	}
	if ok, _ := a.AdminExists(ctx); ok {
		t.Fatalf("no admin should have been created")
	}
	if _, err := a.Bootstrap(ctx, "root", strings.Repeat("p", auth.MaxPasswordBytes)); err != nil {
		t.Fatalf("Bootstrap at the limit: %v", err)
	}
	if _, err := a.CreateUser(ctx, adminCaller, "bob", long); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("CreateUser err = %v, want ErrPasswordTooLong", err)
	}
}

func TestBootstrap_ConcurrentSingleWinner(t *testing.T) {
	d := testutil.OpenFileDB(t)
	a := NewAccounts(repository.NewUserRepository(d), 4)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = a.Bootstrap(context.Background(), "admin"+string(rune('a'+i)), "pw")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAdminExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one successful bootstrap, got %d", wins)
	}
}

func TestLogin(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()
	if _, err := a.Bootstrap(ctx, "root", "pw"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	u, err := a.Login(ctx, "root", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Username != "root" || u.Role != models.RoleAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}

	// Wrong password and unknown user are indistinguishable.
	_, wrongPass := a.Login(ctx, "root", "nope")
	_, unknown := a.Login(ctx, "ghost", "pw")
	if !errors.Is(wrongPass, ErrInvalidCredentials) || !errors.Is(unknown, ErrInvalidCredentials) {
		t.Fatalf("errors = %v / %v, want ErrInvalidCredentials", wrongPass, unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass, unknown)
	}
}

func TestCreateUser(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()

	u, err := a.CreateUser(ctx, adminCaller, "bob", "pw")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 || u.Role != models.RoleUser {
		t.Fatalf("unexpected user: %+v", u)
	}
	if _, err := a.Login(ctx, "bob", "pw"); err != nil {
		t.Fatalf("created user cannot log in: %v", err)
	}
}

func TestCreateUser_Unauthorized(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()
	callers := []*auth.Principal{nil, {ID: 2, Username: "bob", Role: models.RoleUser}}
	for _, c := range callers {
		// Authorization is checked before field presence.
		if _, err := a.CreateUser(ctx, c, "", ""); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("CreateUser(%v) err = %v, want ErrUnauthorized", c, err)
		}
	}
	if _, err := a.CreateUser(ctx, adminCaller, "carol", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
}

func TestCreateUser_DuplicateIsStoreError(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()
	if _, err := a.CreateUser(ctx, adminCaller, "bob", "pw"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := a.CreateUser(ctx, adminCaller, "bob", "other")
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StoreError", err)
	}
	if !errors.Is(err, repository.ErrDuplicateUsername) {
		t.Fatalf("StoreError should wrap ErrDuplicateUsername, got %v", se.Err)
	}
}

func TestListUsers(t *testing.T) {
	a := newTestAccounts(t)
	ctx := context.Background()
	if _, err := a.Bootstrap(ctx, "root", "pw"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if _, err := a.CreateUser(ctx, adminCaller, "bob", "pw"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	users, err := a.ListUsers(ctx, adminCaller, 0, 0)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Username != "root" || users[1].Username != "bob" {
		t.Fatalf("unexpected users: %+v", users)
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Fatalf("hash leaked for %s", u.Username)
		}
	}

	page, err := a.ListUsers(ctx, adminCaller, 1, 1)
	if err != nil || len(page) != 1 || page[0].Username != "bob" {
		t.Fatalf("second page = %+v, %v", page, err)
	}

	if _, err := a.ListUsers(ctx, &auth.Principal{Username: "bob", Role: models.RoleUser}, 10, 0); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestPrincipalFor(t *testing.T) {
	p := PrincipalFor(&models.User{ID: 7, Username: "alice", PasswordHash: "x", Role: models.RoleUser})
	if p != (auth.Principal{ID: 7, Username: "alice", Role: models.RoleUser}) {
		t.Fatalf("PrincipalFor = %+v", p)
	}
}
