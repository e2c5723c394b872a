package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gamelog/apiserver/internal/auth"
	"github.com/gamelog/apiserver/internal/services"
	"github.com/gamelog/apiserver/internal/store"
	"github.com/gamelog/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// LibraryHandler provides HTTP handlers for the caller's game library.
type LibraryHandler struct {
	libraryService *services.LibraryService
}

// NewLibraryHandler constructs a handler with the provided service.
func NewLibraryHandler(libraryService *services.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

// LibraryRouter registers library routes on the given router. All routes
// require authentication via the access policy; entries are always scoped
// to the current principal.
func LibraryRouter(r chi.Router, libraryService *services.LibraryService) {
	handler := NewLibraryHandler(libraryService)

	r.Get("/", handler.ListEntries)
	r.Post("/", handler.CreateEntry)
	r.Route("/{entryID}", func(r chi.Router) {
		r.Put("/", handler.UpdateEntry)
		r.Delete("/", handler.DeleteEntry)
	})
}

func (h *LibraryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	res := auth.ResultFrom(r.Context())

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.libraryService.ListByAccount(r.Context(), res.Subject, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list library")
		return
	}

	writeJSON(w, http.StatusOK, LibraryListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *LibraryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	res := auth.ResultFrom(r.Context())

	var req LibraryEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.GameID) == "" {
		writeError(w, http.StatusBadRequest, "game_id is required")
		return
	}

	created, err := h.libraryService.Create(r.Context(), types.LibraryEntry{
		AccountID: res.Subject,
		GameID:    req.GameID,
		Status:    req.Status,
		Favorite:  req.Favorite,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create library entry")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *LibraryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "entryID")

	entry, err := h.fetchOwned(w, r, id)
	if err != nil {
		return
	}

	var req LibraryEntryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	entry.Status = req.Status
	entry.Favorite = req.Favorite

	updated, err := h.libraryService.Update(r.Context(), entry)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "library entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update library entry")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *LibraryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "entryID")

	if _, err := h.fetchOwned(w, r, id); err != nil {
		return
	}

	if err := h.libraryService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "library entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete library entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fetchOwned loads an entry and verifies the caller owns it, writing the
// error response itself on failure.
func (h *LibraryHandler) fetchOwned(w http.ResponseWriter, r *http.Request, id string) (types.LibraryEntry, error) {
	entry, err := h.libraryService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "library entry not found")
			return types.LibraryEntry{}, err
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch library entry")
		return types.LibraryEntry{}, err
	}

	res := auth.ResultFrom(r.Context())
	if entry.AccountID != res.Subject {
		writeError(w, http.StatusForbidden, "forbidden")
		return types.LibraryEntry{}, errors.New("forbidden")
	}
	return entry, nil
}

type LibraryEntryRequest struct {
	GameID   string              `json:"game_id"`
	Status   types.LibraryStatus `json:"status"`
	Favorite bool                `json:"favorite"`
}

type LibraryEntryUpdateRequest struct {
	Status   types.LibraryStatus `json:"status"`
	Favorite bool                `json:"favorite"`
}

// LibraryListResponse is the paginated list response payload.
type LibraryListResponse struct {
	Items []types.LibraryEntry `json:"items"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
	Total int                  `json:"total"`
}
