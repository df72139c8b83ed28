package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/auth"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/services"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/uploads"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// CatHandler handles HTTP requests for cat management.
type CatHandler struct {
	service services.CatServiceProvider
	storage *uploads.Storage
}

// NewCatHandler creates a new CatHandler.
func NewCatHandler(service services.CatServiceProvider, storage *uploads.Storage) *CatHandler {
	return &CatHandler{service: service, storage: storage}
}

// CatCreatePayload defines the structure for cat creation.
type CatCreatePayload struct {
	Name      string  `json:"name" validate:"required,min=1,max=100"`
	Birthdate string  `json:"birthdate" validate:"required,datetime=2006-01-02,notfuture"`
	Weight    float64 `json:"weight" validate:"required,gte=0.1,lte=50"`
	Owner     int64   `json:"owner" validate:"required,gte=1"`
}

// CatUpdatePayload defines the structure for cat updates; every field is
// optional.
type CatUpdatePayload struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Birthdate *string  `json:"birthdate" validate:"omitempty,datetime=2006-01-02,notfuture"`
	Weight    *float64 `json:"weight" validate:"omitempty,gte=0.1,lte=50"`
	Owner     *int64   `json:"owner" validate:"omitempty,gte=1"`
}

// GetAll handles retrieving all cats with owner names.
func (h *CatHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.GetAllCats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list cats")
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, cats)
}

// Get handles retrieving a cat by its ID.
func (h *CatHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	cat, err := h.service.GetCatByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, cat)
}

// GetByUser handles listing all cats owned by a user.
func (h *CatHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	cats, err := h.service.GetCatsByOwner(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, cats)
}

// Create handles adding a new cat. The body is either JSON or a multipart
// form carrying an optional image under the "file" field; the thumbnail is
// rendered before the record is created.
func (h *CatHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CatCreatePayload
	var filename string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		payload.Name = r.FormValue("name")
		payload.Birthdate = r.FormValue("birthdate")
		payload.Weight, _ = strconv.ParseFloat(r.FormValue("weight"), 64)
		payload.Owner, _ = strconv.ParseInt(r.FormValue("owner"), 10, 64)

		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			name, err := h.storage.Save(file, header.Filename)
			if err != nil {
				log.Error().Err(err).Str("upload", header.Filename).Msg("Failed to store uploaded image")
				respondMessage(w, http.StatusBadRequest, "Uploaded file is not a valid image")
				return
			}
			filename = name
		}
	}

	if !checkPayload(w, &payload) {
		return
	}

	cat, err := h.service.CreateCat(r.Context(), services.CatCreateInput{
		Name:      payload.Name,
		Birthdate: payload.Birthdate,
		Weight:    payload.Weight,
		Owner:     payload.Owner,
		Filename:  filename,
	})
	if err != nil {
		log.Error().Err(err).Int64("owner", payload.Owner).Msg("Failed to create cat")
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, cat)
}

// Update handles updating a cat. Ownership is enforced by the store's
// owner-scoped update for non-admin principals.
func (h *CatHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	principal, _ := auth.FromContext(r.Context())

	var payload CatUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !checkPayload(w, &payload) {
		return
	}

	err := h.service.UpdateCat(r.Context(), id, principal, services.CatUpdateInput{
		Name:      payload.Name,
		Birthdate: payload.Birthdate,
		Weight:    payload.Weight,
		Owner:     payload.Owner,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Cat updated successfully")
}

// Delete handles deleting a cat, subject to the same ownership collapse as
// Update.
func (h *CatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	principal, _ := auth.FromContext(r.Context())

	if err := h.service.DeleteCat(r.Context(), id, principal); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Cat deleted successfully")
}
