package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"locationShare/models"
)

var (
	// ErrAdminExists is returned when an admin row is already present.
	ErrAdminExists = errors.New("admin already exists")

	// ErrDuplicateUsername is returned when the username is taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// AdminExists reports whether any user holds the admin role.
func (r *UserRepository) AdminExists(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role = 'admin')`).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// CreateAdmin inserts the first admin. The existence check and the insert are a
// single statement, and the users_single_admin index rejects a concurrent loser,
// so at most one admin row can ever be written. Returns ErrAdminExists otherwise.
func (r *UserRepository) CreateAdmin(ctx context.Context, username, passwordHash string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password, role)
SELECT ?, ?, 'admin'
WHERE NOT EXISTS (SELECT 1 FROM users WHERE role = 'admin')`, username, passwordHash)
	if err != nil {
		return nil, mapConstraintErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrAdminExists
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	a := models.NewAdmin(username, passwordHash)
	a.ID = id
	return &a.User, nil
}

// Create inserts a user with the given role and returns it with its generated ID.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO users (username, password, role) VALUES (?, ?, ?)`, username, passwordHash, string(role))
	if err != nil {
		return nil, mapConstraintErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Username: username, PasswordHash: passwordHash, Role: role}, nil
}

// GetByUsername returns the user including its password hash, or nil if absent.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.db.QueryRowContext(ctx, `SELECT id, username, password, role FROM users WHERE username = ?`, username))
}

// List returns users ordered by id, without password hashes.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, username, role FROM users ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// mapConstraintErr turns unique-constraint violations into sentinel errors.
func mapConstraintErr(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}
	if strings.Contains(se.Error(), "users.role") {
		return ErrAdminExists
	}
	return ErrDuplicateUsername
}
