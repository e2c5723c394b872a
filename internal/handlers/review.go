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

// ReviewHandler provides HTTP handlers for reviews.
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler constructs a handler with the provided service.
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ReviewRouter registers review routes on the given router. Reads are
// public via the access policy; writes require a token, and updates and
// deletes are restricted to the author or an administrator.
func ReviewRouter(r chi.Router, reviewService *services.ReviewService) {
	handler := NewReviewHandler(reviewService)

	r.Get("/", handler.ListReviews)
	r.Post("/", handler.CreateReview)
	r.Route("/{reviewID}", func(r chi.Router) {
		r.Get("/", handler.GetReview)
		r.Put("/", handler.UpdateReview)
		r.Delete("/", handler.DeleteReview)
	})
}

func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	gameID := strings.TrimSpace(r.URL.Query().Get("game_id"))
	items, total, err := h.reviewService.List(r.Context(), gameID, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	writeJSON(w, http.StatusOK, ReviewListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reviewID")

	review, err := h.reviewService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch review")
		return
	}

	writeJSON(w, http.StatusOK, review)
}

// CreateReview writes a review authored by the current principal.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	res := auth.ResultFrom(r.Context())

	var req ReviewCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.GameID) == "" {
		writeError(w, http.StatusBadRequest, "game_id is required")
		return
	}

	created, err := h.reviewService.Create(r.Context(), types.Review{
		AccountID: res.Subject,
		GameID:    req.GameID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidRating) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create review")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reviewID")

	review, err := h.reviewService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch review")
		return
	}

	if !canManageReview(r, review) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req ReviewUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	review.Rating = req.Rating
	review.Comment = req.Comment

	updated, err := h.reviewService.Update(r.Context(), review)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRating) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update review")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reviewID")

	review, err := h.reviewService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch review")
		return
	}

	if !canManageReview(r, review) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.reviewService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "review not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func canManageReview(r *http.Request, review types.Review) bool {
	res := auth.ResultFrom(r.Context())
	if !res.Authenticated {
		return false
	}
	return res.Subject == review.AccountID || res.Role == types.RoleAdministrator
}

type ReviewCreateRequest struct {
	GameID  string `json:"game_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewUpdateRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewListResponse is the paginated list response payload.
type ReviewListResponse struct {
	Items []types.Review `json:"items"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
}
