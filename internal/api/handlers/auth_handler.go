package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/auth"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/services"
)

// AuthHandler handles login and principal introspection.
type AuthHandler struct {
	users         services.UserServiceProvider
	tokens        *auth.Service
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. Cookies carry the Secure flag
// when appEnv is production.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.Service, appEnv string) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, secureCookies: appEnv == "production"}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !checkPayload(w, &payload) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		respondError(w, err)
		return
	}

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		respondError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	respondData(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Me echoes the verified principal from the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"user": principal})
}
