package models

// Role is the authorization role of a user account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an account in the credential store.
// It maps to the `users` table in SQLite.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password" json:"-"` // bcrypt hash, never exposed
	Role         Role   `db:"role" json:"role"`
}
