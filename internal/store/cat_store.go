package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/models"
)

// CatStore provides CRUD primitives over the cats table.
type CatStore struct {
	db *sql.DB
}

// NewCatStore creates a new CatStore.
func NewCatStore(db *sql.DB) *CatStore {
	return &CatStore{db: db}
}

// CatUpdate carries the optional fields of a cat update.
// Nil fields leave the corresponding column untouched.
type CatUpdate struct {
	Name      *string
	Birthdate *string
	Weight    *float64
	Owner     *int64
	Filename  *string
}

// Cat reads join against users to attach the owner's display name.
const catSelect = `
	SELECT c.cat_id, c.cat_name, c.birthdate, c.weight, c.owner, c.filename, u.name AS owner_name, c.created_at
	FROM cats c
	LEFT JOIN users u ON c.owner = u.user_id`

// scanCat is a helper to scan a cat from a row or rows object.
func scanCat(scanner interface{ Scan(...interface{}) error }) (models.Cat, error) {
	var cat models.Cat
	var filename, ownerName sql.NullString

	err := scanner.Scan(&cat.ID, &cat.Name, &cat.Birthdate, &cat.Weight, &cat.Owner,
		&filename, &ownerName, &cat.CreatedAt)
	if err != nil {
		return cat, err
	}
	cat.Filename = filename.String
	cat.OwnerName = ownerName.String
	return cat, nil
}

// GetAll retrieves every cat with its owner's display name.
func (s *CatStore) GetAll(ctx context.Context) ([]models.Cat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, catSelect+` ORDER BY c.cat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.Cat
	for rows.Next() {
		cat, err := scanCat(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// GetByID retrieves a single cat by id. Returns nil on miss.
func (s *CatStore) GetByID(ctx context.Context, id int64) (*models.Cat, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	cat, err := scanCat(s.db.QueryRowContext(ctx, catSelect+` WHERE c.cat_id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

// GetByOwner retrieves all cats owned by the given user.
func (s *CatStore) GetByOwner(ctx context.Context, ownerID int64) ([]models.Cat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, catSelect+` WHERE c.owner = ? ORDER BY c.cat_id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.Cat
	for rows.Next() {
		cat, err := scanCat(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// Create inserts a new cat and returns it with the store-generated id.
// An owner referencing a missing user yields ErrInvalidReference.
func (s *CatStore) Create(ctx context.Context, cat models.Cat) (models.Cat, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var filename interface{}
	if cat.Filename != "" {
		filename = cat.Filename
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO cats (cat_name, birthdate, weight, owner, filename) VALUES (?, ?, ?, ?, ?)`,
		cat.Name, cat.Birthdate, cat.Weight, cat.Owner, filename)
	if err != nil {
		return models.Cat{}, translateErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Cat{}, err
	}
	cat.ID = id
	return cat, nil
}

// Update applies the non-nil fields of upd to the cat row. When ownerScope is
// set the update is additionally conditioned on owner = *ownerScope, so the
// ownership and existence checks collapse into the affected-row count.
func (s *CatStore) Update(ctx context.Context, id int64, upd CatUpdate, ownerScope *int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 7)
	if upd.Name != nil {
		sets = append(sets, "cat_name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Birthdate != nil {
		sets = append(sets, "birthdate = ?")
		args = append(args, *upd.Birthdate)
	}
	if upd.Weight != nil {
		sets = append(sets, "weight = ?")
		args = append(args, *upd.Weight)
	}
	if upd.Owner != nil {
		sets = append(sets, "owner = ?")
		args = append(args, *upd.Owner)
	}
	if upd.Filename != nil {
		sets = append(sets, "filename = ?")
		args = append(args, *upd.Filename)
	}
	if len(sets) == 0 {
		return s.exists(ctx, id, ownerScope)
	}

	query := "UPDATE cats SET " + strings.Join(sets, ", ") + " WHERE cat_id = ?"
	args = append(args, id)
	if ownerScope != nil {
		query += " AND owner = ?"
		args = append(args, *ownerScope)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, translateErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a cat, scoped to its owner for non-admin callers.
func (s *CatStore) Delete(ctx context.Context, id int64, ownerScope *int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `DELETE FROM cats WHERE cat_id = ?`
	args := []interface{}{id}
	if ownerScope != nil {
		query += " AND owner = ?"
		args = append(args, *ownerScope)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Filenames returns every stored upload reference. Used by the upload pruner
// to decide which files on disk are still live.
func (s *CatStore) Filenames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT filename FROM cats WHERE filename IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *CatStore) exists(ctx context.Context, id int64, ownerScope *int64) (bool, error) {
	query := `SELECT 1 FROM cats WHERE cat_id = ?`
	args := []interface{}{id}
	if ownerScope != nil {
		query += " AND owner = ?"
		args = append(args, *ownerScope)
	}
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
