package db

import (
	"path/filepath"
	"testing"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	d, err := Open("file:dbmigrations?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	versions, err := AppliedVersions(d)
	if err != nil {
		t.Fatalf("applied versions: %v", err)
	}
	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Fatalf("versions = %v, want [1 2]", versions)
	}
	if _, err := d.Exec(`INSERT INTO users (username, password, role) VALUES ('a', 'h', 'user')`); err != nil {
		t.Fatalf("users table not usable: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO users (username, password, role) VALUES ('b', 'h', 'owner')`); err == nil {
		t.Fatalf("expected role check constraint to reject unknown role")
	}
}

func TestOpen_IdempotentAndRollback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = d.Close()

	d, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := RollbackLast(d); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	versions, _ := AppliedVersions(d)
	if len(versions) != 1 || versions[0] != 1 {
		t.Fatalf("versions after rollback = %v, want [1]", versions)
	}
	// Without the single-admin index two admin rows are accepted again.
	for _, name := range []string{"a", "b"} {
		if _, err := d.Exec(`INSERT INTO users (username, password, role) VALUES (?, 'h', 'admin')`, name); err != nil {
			t.Fatalf("insert admin %s: %v", name, err)
		}
	}
}

func TestWithBusyTimeout(t *testing.T) {
	cases := map[string]string{
		"users.db":                   "users.db?_busy_timeout=5000",
		"file:x?mode=memory":         "file:x?mode=memory&_busy_timeout=5000",
		"users.db?_busy_timeout=100": "users.db?_busy_timeout=100",
	}
	for in, want := range cases {
		if got := withBusyTimeout(in); got != want {
			t.Fatalf("withBusyTimeout(%q) = %q, want %q", in, got, want)
		}
	}
}
