package database

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// New creates a new database connection pool. Foreign key enforcement and the
// busy timeout are per-connection settings in SQLite, so they go into the DSN
// where the driver applies them to every connection the pool opens.
func New(dataSourceName string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dataSourceName, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", dataSourceName+sep+"_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	// journal_mode is persisted in the database itself, so a single statement
	// suffices. It may not be supported in some contexts (e.g., in-memory);
	// ignore errors.
	_, _ = db.Exec(`PRAGMA journal_mode=WAL`)
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		password TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS cats (
		cat_id INTEGER PRIMARY KEY AUTOINCREMENT,
		cat_name TEXT NOT NULL,
		birthdate TEXT NOT NULL,
		weight REAL NOT NULL,
		owner INTEGER NOT NULL REFERENCES users(user_id),
		filename TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_cats_owner ON cats(owner);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		user_id INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
