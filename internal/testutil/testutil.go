package testutil

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"locationShare/internal/db"
)

// OpenInMemoryDB opens a named in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache lets every pooled connection see the same in-memory database.
	// The test name keeps parallel packages from sharing state.
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// OpenFileDB opens a database file under t.TempDir. Use it when a test writes
// from several goroutines, which shared-cache memory databases do not tolerate.
func OpenFileDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// SignSessionToken returns an HS256 session cookie value for sessionID,
// valid for one hour, without going through the auth package.
func SignSessionToken(t *testing.T, secret, sessionID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
