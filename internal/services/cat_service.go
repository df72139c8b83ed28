package services

import (
	"context"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/auth"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/models"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/store"
)

// CatCreateInput holds the fields of a new cat. Filename is set when an
// image was uploaded alongside the form and is empty otherwise.
type CatCreateInput struct {
	Name      string
	Birthdate string
	Weight    float64
	Owner     int64
	Filename  string
}

// CatUpdateInput holds the optional fields of a cat update.
type CatUpdateInput struct {
	Name      *string
	Birthdate *string
	Weight    *float64
	Owner     *int64
	Filename  *string
}

// CatServiceProvider defines the interface for cat services.
type CatServiceProvider interface {
	GetAllCats(ctx context.Context) ([]models.Cat, error)
	GetCatByID(ctx context.Context, id int64) (models.Cat, error)
	GetCatsByOwner(ctx context.Context, ownerID int64) ([]models.Cat, error)
	CreateCat(ctx context.Context, in CatCreateInput) (models.Cat, error)
	UpdateCat(ctx context.Context, id int64, principal *auth.Principal, in CatUpdateInput) error
	DeleteCat(ctx context.Context, id int64, principal *auth.Principal) error
}

// CatService provides business logic for cat management.
type CatService struct {
	cats *store.CatStore
}

// NewCatService creates a new CatService.
func NewCatService(cats *store.CatStore) *CatService {
	return &CatService{cats: cats}
}

// GetAllCats retrieves all cats with their owners' display names.
func (s *CatService) GetAllCats(ctx context.Context) ([]models.Cat, error) {
	return s.cats.GetAll(ctx)
}

// GetCatByID retrieves a single cat by its ID.
func (s *CatService) GetCatByID(ctx context.Context, id int64) (models.Cat, error) {
	cat, err := s.cats.GetByID(ctx, id)
	if err != nil {
		return models.Cat{}, err
	}
	if cat == nil {
		return models.Cat{}, ErrNotFound
	}
	return *cat, nil
}

// GetCatsByOwner retrieves all cats owned by the given user.
func (s *CatService) GetCatsByOwner(ctx context.Context, ownerID int64) ([]models.Cat, error) {
	return s.cats.GetByOwner(ctx, ownerID)
}

// CreateCat adds a new cat. Any authenticated principal may create a cat for
// any valid owner id; the foreign key is the only constraint on owner.
func (s *CatService) CreateCat(ctx context.Context, in CatCreateInput) (models.Cat, error) {
	return s.cats.Create(ctx, models.Cat{
		Name:      in.Name,
		Birthdate: in.Birthdate,
		Weight:    in.Weight,
		Owner:     in.Owner,
		Filename:  in.Filename,
	})
}

// UpdateCat updates a cat on behalf of the acting principal. For non-admins
// the store conditions the update on ownership, so a zero affected-row count
// is ambiguous between "doesn't exist" and "not yours" and is reported
// uniformly as ErrNotFoundOrForbidden.
func (s *CatService) UpdateCat(ctx context.Context, id int64, principal *auth.Principal, in CatUpdateInput) error {
	affected, err := s.cats.Update(ctx, id, store.CatUpdate{
		Name:      in.Name,
		Birthdate: in.Birthdate,
		Weight:    in.Weight,
		Owner:     in.Owner,
		Filename:  in.Filename,
	}, ownerScope(principal))
	if err != nil {
		return err
	}
	if !affected {
		return ErrNotFoundOrForbidden
	}
	return nil
}

// DeleteCat removes a cat, subject to the same ownership collapse as UpdateCat.
func (s *CatService) DeleteCat(ctx context.Context, id int64, principal *auth.Principal) error {
	affected, err := s.cats.Delete(ctx, id, ownerScope(principal))
	if err != nil {
		return err
	}
	if !affected {
		return ErrNotFoundOrForbidden
	}
	return nil
}

// ownerScope returns the owner condition for store mutations: nil for admins
// (id alone), the principal's own id for everyone else.
func ownerScope(p *auth.Principal) *int64 {
	if p == nil {
		zero := int64(0)
		return &zero
	}
	if p.Role == models.RoleAdmin {
		return nil
	}
	id := p.UserID
	return &id
}
