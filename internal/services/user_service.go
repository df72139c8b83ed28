package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/auth"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/models"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/store"
)

// RegisterInput holds the fields of a new registration.
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Role     string
	Password string
}

// UserUpdateInput holds the optional fields of a user update.
type UserUpdateInput struct {
	Name     *string
	Username *string
	Email    *string
	Role     *string
	Password *string
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	UpdateUser(ctx context.Context, id int64, principal *auth.Principal, in UserUpdateInput) error
	DeleteUser(ctx context.Context, id int64, principal *auth.Principal) error
	Authenticate(ctx context.Context, username, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	users  *store.UserStore
	events EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(users *store.UserStore, events EventServiceProvider) *UserService {
	return &UserService{users: users, events: events}
}

// GetAllUsers retrieves all users. Password hashes are never populated.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.users.GetAll(ctx)
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, ErrNotFound
	}
	return *user, nil
}

// Register creates a new user, hashing their password before it reaches the
// store. The returned record carries the generated id and no hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}

	user, err := s.users.Create(ctx, models.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		Role:         role,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return models.User{}, err
	}

	s.events.Record(ctx, "user.register", "info",
		fmt.Sprintf("user %q registered", user.Username), &user.ID)

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// UpdateUser updates a user record on behalf of the acting principal.
// Non-admins may only update themselves, and their attempts to change the
// role field are silently ignored so they cannot escalate privilege.
func (s *UserService) UpdateUser(ctx context.Context, id int64, principal *auth.Principal, in UserUpdateInput) error {
	if !auth.CanModify(principal, id) {
		return ErrForbidden
	}

	upd := store.UserUpdate{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
	}
	if principal.Role == models.RoleAdmin {
		upd.Role = in.Role
	}
	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hashed)
		upd.PasswordHash = &h
	}

	affected, err := s.users.Update(ctx, id, upd)
	if err != nil {
		return err
	}
	if !affected {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user and, atomically, every cat it owns.
func (s *UserService) DeleteUser(ctx context.Context, id int64, principal *auth.Principal) error {
	if !auth.CanModify(principal, id) {
		return ErrForbidden
	}

	affected, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !affected {
		return ErrNotFound
	}

	s.events.Record(ctx, "user.delete", "info",
		fmt.Sprintf("user %d and owned cats deleted by %q", id, principal.Username), &id)
	return nil
}

// Authenticate verifies a user's credentials. Unknown usernames and wrong
// passwords fail identically.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.events.Record(ctx, "auth.login.failed", "warn",
			fmt.Sprintf("failed login attempt for %q", username), &user.ID)
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return *user, nil
}
