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

// AuthHandler provides the login endpoint and current-account lookup.
type AuthHandler struct {
	accountService *services.AccountService
	codec          *auth.TokenCodec
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(accountService *services.AccountService, codec *auth.TokenCodec) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		codec:          codec,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, accountService *services.AccountService, codec *auth.TokenCodec) {
	handler := NewAuthHandler(accountService, codec)

	r.Post("/login", handler.Login)
	r.Get("/me", handler.Me)
}

// Login verifies credentials and returns a signed bearer token. A wrong
// password and an unknown email produce the same 401 response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	account, err := h.accountService.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	token, err := h.codec.Issue(account.ID, account.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		Role:      account.Role,
	})
}

// Me returns the account of the current principal.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	res := auth.ResultFrom(r.Context())
	if !res.Authenticated {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.accountService.GetByID(r.Context(), res.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load account")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	Role      types.Role `json:"role"`
}
