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

// ListHandler provides HTTP handlers for curated lists.
type ListHandler struct {
	listService *services.ListService
}

// NewListHandler constructs a handler with the provided service.
func NewListHandler(listService *services.ListService) *ListHandler {
	return &ListHandler{listService: listService}
}

// ListRouter registers curated-list routes on the given router. Single-list
// reads are public via the access policy, but private lists are hidden from
// everyone except their owner; all mutation is owner-only.
func ListRouter(r chi.Router, listService *services.ListService) {
	handler := NewListHandler(listService)

	r.Get("/", handler.ListLists)
	r.Post("/", handler.CreateList)
	r.Route("/{listID}", func(r chi.Router) {
		r.Get("/", handler.GetList)
		r.Put("/", handler.UpdateList)
		r.Delete("/", handler.DeleteList)
		r.Post("/games/{gameID}", handler.AddGame)
		r.Delete("/games/{gameID}", handler.RemoveGame)
	})
}

// ListLists returns the caller's own lists.
func (h *ListHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	res := auth.ResultFrom(r.Context())
	if !res.Authenticated {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.listService.ListByAccount(r.Context(), res.Subject, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list lists")
		return
	}

	writeJSON(w, http.StatusOK, CuratedListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// GetList returns a list. Private lists are reported as not found to
// anyone but their owner.
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "listID")

	list, err := h.listService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "list not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch list")
		return
	}

	res := auth.ResultFrom(r.Context())
	if !list.Public && (!res.Authenticated || res.Subject != list.AccountID) {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	res := auth.ResultFrom(r.Context())

	var req ListUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.listService.Create(r.Context(), types.List{
		AccountID: res.Subject,
		Name:      req.Name,
		Public:    req.Public,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create list")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "listID")

	list, err := h.fetchOwned(w, r, id)
	if err != nil {
		return
	}

	var req ListUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list.Name = req.Name
	list.Public = req.Public

	updated, err := h.listService.Update(r.Context(), list)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "list not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update list")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "listID")

	if _, err := h.fetchOwned(w, r, id); err != nil {
		return
	}

	if err := h.listService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "list not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete list")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) AddGame(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	gameID := chi.URLParam(r, "gameID")

	if _, err := h.fetchOwned(w, r, listID); err != nil {
		return
	}

	if err := h.listService.AddItem(r.Context(), listID, gameID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add game to list")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) RemoveGame(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	gameID := chi.URLParam(r, "gameID")

	if _, err := h.fetchOwned(w, r, listID); err != nil {
		return
	}

	if err := h.listService.RemoveItem(r.Context(), listID, gameID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not in list")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove game from list")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fetchOwned loads a list and verifies the caller owns it, writing the
// error response itself on failure.
func (h *ListHandler) fetchOwned(w http.ResponseWriter, r *http.Request, id string) (types.List, error) {
	list, err := h.listService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "list not found")
			return types.List{}, err
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch list")
		return types.List{}, err
	}

	res := auth.ResultFrom(r.Context())
	if !res.Authenticated || list.AccountID != res.Subject {
		writeError(w, http.StatusForbidden, "forbidden")
		return types.List{}, errors.New("forbidden")
	}
	return list, nil
}

type ListUpsertRequest struct {
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// CuratedListResponse is the paginated list response payload.
type CuratedListResponse struct {
	Items []types.List `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}
