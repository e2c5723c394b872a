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
	"golang.org/x/crypto/bcrypt"
)

// AccountHandler provides HTTP handlers for accounts.
type AccountHandler struct {
	accountService *services.AccountService
}

// NewAccountHandler constructs a handler with the provided service.
func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// AccountRouter registers account routes on the given router. Registration
// is public via the access policy; everything else requires a token.
func AccountRouter(r chi.Router, accountService *services.AccountService) {
	handler := NewAccountHandler(accountService)

	r.Post("/", handler.Register)
	r.Get("/", handler.ListAccounts)
	r.Route("/{accountID}", func(r chi.Router) {
		r.Get("/", handler.GetAccount)
		r.Put("/", handler.UpdateAccount)
		r.Delete("/", handler.DeleteAccount)
	})
}

// AdminAccountRouter registers the role escalation endpoint. The access
// policy gates the whole /admin subtree at ROLE(ADMINISTRATOR).
func AdminAccountRouter(r chi.Router, accountService *services.AccountService) {
	handler := NewAccountHandler(accountService)

	r.Put("/accounts/{accountID}/role", handler.SetRole)
}

// Register creates a new account with the default role.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	if _, err := h.accountService.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "email already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to check account")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	account, err := h.accountService.Create(r.Context(), types.Account{
		Name:         req.Name,
		Email:        req.Email,
		Role:         types.RoleStandard,
		PasswordHash: string(hashed),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.accountService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}

	writeJSON(w, http.StatusOK, AccountListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "accountID")

	account, err := h.accountService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch account")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// UpdateAccount changes an account's own profile fields. Only the account
// itself or an administrator may update it. Role is not updatable here.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "accountID")
	if !canManageAccount(r, id) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	account, err := h.accountService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch account")
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		account.Name = name
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		account.Email = email
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update account")
			return
		}
		account.PasswordHash = string(hashed)
	}

	updated, err := h.accountService.Update(r.Context(), account)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update account")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "accountID")
	if !canManageAccount(r, id) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.accountService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetRole overwrites the target account's role. Tokens issued before the
// change keep their old role claim until expiry.
func (h *AccountHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "accountID")

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	updated, err := h.accountService.SetRole(r.Context(), id, req.Role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func canManageAccount(r *http.Request, accountID string) bool {
	res := auth.ResultFrom(r.Context())
	if !res.Authenticated {
		return false
	}
	return res.Subject == accountID || res.Role == types.RoleAdministrator
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SetRoleRequest struct {
	Role types.Role `json:"role"`
}

// AccountListResponse is the paginated list response payload.
type AccountListResponse struct {
	Items []types.Account `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int             `json:"total"`
}
