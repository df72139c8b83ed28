package testutil

import (
	"context"
	"database/sql"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/database"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/models"
)

// OpenDB opens an in-memory SQLite database and applies the schema.
// A shared cache keeps the database alive across pooled connections.
// The DB is closed via t.Cleanup.
func OpenDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := database.New("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// SeedUser inserts a user row directly and returns it with its generated id.
// The password is stored bcrypt-hashed, as the service layer would.
func SeedUser(t *testing.T, db *sql.DB, username, password, role string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := models.User{
		Name:     username + " Test",
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	res, err := db.ExecContext(context.Background(),
		`INSERT INTO users (name, username, email, role, password) VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Username, u.Email, u.Role, string(hashed))
	if err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seed user id: %v", err)
	}
	u.ID = id
	return u
}

// SeedCat inserts a cat row directly and returns its generated id.
func SeedCat(t *testing.T, db *sql.DB, name string, ownerID int64) int64 {
	t.Helper()
	res, err := db.ExecContext(context.Background(),
		`INSERT INTO cats (cat_name, birthdate, weight, owner) VALUES (?, ?, ?, ?)`,
		name, "2020-01-15", 4.2, ownerID)
	if err != nil {
		t.Fatalf("seed cat %q: %v", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seed cat id: %v", err)
	}
	return id
}
