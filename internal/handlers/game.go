package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gamelog/apiserver/internal/services"
	"github.com/gamelog/apiserver/internal/store"
	"github.com/gamelog/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const (
	maxCoverMemory = 8 << 20
	maxCoverBytes  = 16 << 20
	formFieldCover = "cover"
)

// GameHandler provides HTTP handlers for games.
type GameHandler struct {
	gameService *services.GameService
}

// NewGameHandler constructs a handler with the provided service.
func NewGameHandler(gameService *services.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// GameRouter registers game routes on the given router. Reads are public
// via the access policy; writes are gated at ROLE(ADMINISTRATOR).
func GameRouter(r chi.Router, gameService *services.GameService) {
	handler := NewGameHandler(gameService)

	r.Get("/", handler.ListGames)
	r.Post("/", handler.CreateGame)
	r.Route("/{gameID}", func(r chi.Router) {
		r.Get("/", handler.GetGame)
		r.Put("/", handler.UpdateGame)
		r.Delete("/", handler.DeleteGame)
		r.Get("/cover", handler.GetCover)
		r.Put("/cover", handler.SetCover)
	})
}

func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.gameService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list games")
		return
	}

	writeJSON(w, http.StatusOK, GameListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")

	game, err := h.gameService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch game")
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	req, err := parseGameBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.gameService.Create(r.Context(), types.Game{
		ExternalID:  req.ExternalID,
		Title:       req.Title,
		Description: req.Description,
		ReleaseYear: req.ReleaseYear,
		Platforms:   req.Platforms,
		Genre:       req.Genre,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")

	req, err := parseGameBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := h.gameService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch game")
		return
	}

	current.ExternalID = req.ExternalID
	current.Title = req.Title
	current.Description = req.Description
	current.ReleaseYear = req.ReleaseYear
	current.Platforms = req.Platforms
	current.Genre = req.Genre

	updated, err := h.gameService.Update(r.Context(), current)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update game")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")

	if err := h.gameService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete game")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetCover stores an uploaded cover image for the game.
func (h *GameHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")

	if err := r.ParseMultipartForm(maxCoverMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File[formFieldCover]
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one cover file is required")
		return
	}

	file, err := files[0].Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read cover file")
		return
	}
	data, err := readFileLimited(file, maxCoverBytes)
	_ = file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := files[0].Header.Get("Content-Type")
	game, err := h.gameService.SetCover(r.Context(), id, data, contentType)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store cover")
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// GetCover streams the game's stored cover image.
func (h *GameHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")

	reader, err := h.gameService.GetCover(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, services.ErrNoCover) {
			writeError(w, http.StatusNotFound, "cover not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch cover")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

type GameUpsertRequest struct {
	ExternalID  int64    `json:"external_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ReleaseYear int      `json:"release_year"`
	Platforms   []string `json:"platforms"`
	Genre       string   `json:"genre"`
}

// GameListResponse is the paginated list response payload.
type GameListResponse struct {
	Items []types.Game `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}

func parseGameBody(r *http.Request) (GameUpsertRequest, error) {
	var req GameUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return GameUpsertRequest{}, errors.New("invalid request")
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return GameUpsertRequest{}, errors.New("title is required")
	}
	return req, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
