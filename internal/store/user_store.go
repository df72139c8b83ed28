package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/models"
)

// UserStore provides CRUD primitives over the users table.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// UserUpdate carries the optional fields of a user update.
// Nil fields leave the corresponding column untouched.
type UserUpdate struct {
	Name         *string
	Username     *string
	Email        *string
	Role         *string
	PasswordHash *string
}

// GetAll retrieves every user. Password hashes are never selected.
func (s *UserStore) GetAll(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, name, username, email, role, created_at FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetByID retrieves a single user by id. Returns nil on miss.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, username, email, role, created_at FROM users WHERE user_id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername retrieves a single user by username, including the password
// hash for credential verification. Returns nil on miss.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, username, email, role, password, created_at FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user and returns it with the store-generated id.
// A username or email collision yields ErrDuplicate.
func (s *UserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, username, email, role, password) VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Username, u.Email, u.Role, u.PasswordHash)
	if err != nil {
		return models.User{}, translateErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	return u, nil
}

// Update applies the non-nil fields of upd to the user row.
// Reports whether a row was affected, so callers can tell "not found" apart
// from other failures without exception-style control flow.
func (s *UserStore) Update(ctx context.Context, id int64, upd UserUpdate) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *upd.Username)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *upd.Role)
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password = ?")
		args = append(args, *upd.PasswordHash)
	}
	if len(sets) == 0 {
		// Nothing to change; report whether the row exists.
		u, err := s.GetByID(ctx, id)
		return u != nil, err
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE user_id = ?", args...)
	if err != nil {
		return false, translateErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a user together with all cats it owns, as a single
// transaction. Either both deletes commit or neither does, so no orphaned
// cats and no partial deletion is ever observable.
func (s *UserStore) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cats WHERE owner = ?`, id); err != nil {
		_ = tx.Rollback()
		return false, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n > 0, nil
}
