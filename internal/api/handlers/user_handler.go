package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/auth"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/services"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50,usernamechars"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,strongpassword"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UserUpdatePayload defines the structure for update requests; every field
// is optional.
type UserUpdatePayload struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Username *string `json:"username" validate:"omitempty,min=3,max=50,usernamechars"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,strongpassword"`
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
}

// GetAll handles retrieving all users. Password hashes are never included.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, users)
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !checkPayload(w, &payload) {
		return
	}

	user, err := h.service.Register(r.Context(), services.RegisterInput{
		Name:     payload.Name,
		Username: payload.Username,
		Email:    payload.Email,
		Role:     payload.Role,
		Password: payload.Password,
	})
	if err != nil {
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, user)
}

// Update handles updating a user's profile. Non-admins may only update
// themselves; role changes by non-admins are dropped in the service layer.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	principal, _ := auth.FromContext(r.Context())

	var payload UserUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !checkPayload(w, &payload) {
		return
	}

	err := h.service.UpdateUser(r.Context(), id, principal, services.UserUpdateInput{
		Name:     payload.Name,
		Username: payload.Username,
		Email:    payload.Email,
		Role:     payload.Role,
		Password: payload.Password,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "User updated successfully")
}

// Delete handles the permanent deletion of a user account together with all
// cats it owns.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	principal, _ := auth.FromContext(r.Context())

	if err := h.service.DeleteUser(r.Context(), id, principal); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "User and associated cats deleted successfully")
}
