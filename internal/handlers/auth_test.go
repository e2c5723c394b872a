package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gamelog/apiserver/internal/auth"
	"github.com/gamelog/apiserver/internal/services"
	"github.com/gamelog/apiserver/internal/store"
	"github.com/gamelog/apiserver/types"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]types.Account
	nextID   int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]types.Account{}}
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (types.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return types.Account{}, store.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (types.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return types.Account{}, store.ErrNotFound
}

func (f *fakeAccountRepo) List(ctx context.Context, offset, limit int) ([]types.Account, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts := make([]types.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		accounts = append(accounts, account)
	}
	return accounts, len(accounts), nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, account types.Account) (types.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	account.ID = "acc-" + strconv.Itoa(f.nextID)
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	f.accounts[account.ID] = account
	return account, nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, account types.Account) (types.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.ID]; !ok {
		return types.Account{}, store.ErrNotFound
	}
	account.UpdatedAt = time.Now()
	f.accounts[account.ID] = account
	return account, nil
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.accounts, id)
	return nil
}

type authTestEnv struct {
	router *chi.Mux
	repo   *fakeAccountRepo
	codec  *auth.TokenCodec
}

// newAuthTestEnv assembles the same middleware chain and routes the real
// server wires, backed by an in-memory account repository.
func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	codec, err := auth.NewTokenCodec("test-secret-test-secret-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	repo := newFakeAccountRepo()
	accountService := services.NewAccountService(repo, nil)

	authenticator := auth.NewAuthenticator(codec, repo)
	policy := auth.NewPolicy([]auth.AccessRule{
		auth.Public("POST", "/auth/login"),
		auth.Public("POST", "/accounts"),
		auth.RequireRole("*", "/admin/**", types.RoleAdministrator),
	})

	router := chi.NewRouter()
	router.Use(authenticator.Middleware, policy.Middleware)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, accountService, codec)
	})
	router.Route("/accounts", func(r chi.Router) {
		AccountRouter(r, accountService)
	})
	router.Route("/admin", func(r chi.Router) {
		AdminAccountRouter(r, accountService)
	})

	return &authTestEnv{router: router, repo: repo, codec: codec}
}

func (e *authTestEnv) seedAccount(t *testing.T, email, password string, role types.Role) types.Account {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account, err := e.repo.Create(context.Background(), types.Account{
		Name:         "Test User",
		Email:        email,
		Role:         role,
		PasswordHash: string(hashed),
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func (e *authTestEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *authTestEnv) login(t *testing.T, email, password string) (LoginResponse, *httptest.ResponseRecorder) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: password})
	var resp LoginResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode login response: %v", err)
		}
	}
	return resp, rec
}

func TestLoginIssuesTokenWithRole(t *testing.T) {
	env := newAuthTestEnv(t)
	account := env.seedAccount(t, "u1@example.com", "secret123", types.RoleStandard)

	resp, rec := env.login(t, "u1@example.com", "secret123")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("token_type = %q, want Bearer", resp.TokenType)
	}
	if resp.Role != types.RoleStandard {
		t.Errorf("role = %q, want STANDARD", resp.Role)
	}

	subject, role, err := env.codec.Validate(resp.Token)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if subject != account.ID {
		t.Errorf("token subject = %q, want %q", subject, account.ID)
	}
	if role != types.RoleStandard {
		t.Errorf("token role = %q, want STANDARD", role)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newAuthTestEnv(t)
	env.seedAccount(t, "u1@example.com", "secret123", types.RoleStandard)

	_, wrongPassword := env.login(t, "u1@example.com", "wrong")
	_, unknownEmail := env.login(t, "nobody@example.com", "secret123")

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", wrongPassword.Code)
	}
	if unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email status = %d, want 401", unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("response bodies differ: %q vs %q",
			wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestStandardRoleDeniedOnAdminRoute(t *testing.T) {
	env := newAuthTestEnv(t)
	target := env.seedAccount(t, "u1@example.com", "secret123", types.RoleStandard)

	resp, rec := env.login(t, "u1@example.com", "secret123")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}

	escalate := env.do(t, http.MethodPut, "/admin/accounts/"+target.ID+"/role",
		resp.Token, SetRoleRequest{Role: types.RoleAdministrator})
	if escalate.Code != http.StatusForbidden {
		t.Fatalf("escalate status = %d, want 403", escalate.Code)
	}
}

func TestAnonymousDeniedOnAdminRoute(t *testing.T) {
	env := newAuthTestEnv(t)
	target := env.seedAccount(t, "u1@example.com", "secret123", types.RoleStandard)

	rec := env.do(t, http.MethodPut, "/admin/accounts/"+target.ID+"/role",
		"", SetRoleRequest{Role: types.RoleAdministrator})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRoleEscalation(t *testing.T) {
	env := newAuthTestEnv(t)
	env.seedAccount(t, "admin@example.com", "adminpass", types.RoleAdministrator)
	target := env.seedAccount(t, "u1@example.com", "secret123", types.RoleStandard)

	adminResp, rec := env.login(t, "admin@example.com", "adminpass")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login status = %d, want 200", rec.Code)
	}
	targetResp, rec := env.login(t, "u1@example.com", "secret123")
	if rec.Code != http.StatusOK {
		t.Fatalf("target login status = %d, want 200", rec.Code)
	}

	escalate := env.do(t, http.MethodPut, "/admin/accounts/"+target.ID+"/role",
		adminResp.Token, SetRoleRequest{Role: types.RoleAdministrator})
	if escalate.Code != http.StatusOK {
		t.Fatalf("escalate status = %d, want 200: %s", escalate.Code, escalate.Body.String())
	}

	var updated types.Account
	if err := json.Unmarshal(escalate.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated account: %v", err)
	}
	if updated.Role != types.RoleAdministrator {
		t.Errorf("updated role = %q, want ADMINISTRATOR", updated.Role)
	}

	// The token issued before the change still carries the old role
	// claim: the target remains locked out of admin routes until a new
	// login reissues the token.
	_, role, err := env.codec.Validate(targetResp.Token)
	if err != nil {
		t.Fatalf("validate old token: %v", err)
	}
	if role != types.RoleStandard {
		t.Errorf("old token role = %q, want STANDARD", role)
	}
	stale := env.do(t, http.MethodPut, "/admin/accounts/"+target.ID+"/role",
		targetResp.Token, SetRoleRequest{Role: types.RoleStandard})
	if stale.Code != http.StatusForbidden {
		t.Fatalf("stale token status = %d, want 403", stale.Code)
	}

	// A fresh login picks up the new role.
	fresh, rec := env.login(t, "u1@example.com", "secret123")
	if rec.Code != http.StatusOK {
		t.Fatalf("fresh login status = %d, want 200", rec.Code)
	}
	if fresh.Role != types.RoleAdministrator {
		t.Errorf("fresh role = %q, want ADMINISTRATOR", fresh.Role)
	}
}

func TestRoleEscalationTargetMissing(t *testing.T) {
	env := newAuthTestEnv(t)
	env.seedAccount(t, "admin@example.com", "adminpass", types.RoleAdministrator)

	adminResp, rec := env.login(t, "admin@example.com", "adminpass")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login status = %d, want 200", rec.Code)
	}

	missing := env.do(t, http.MethodPut, "/admin/accounts/no-such-account/role",
		adminResp.Token, SetRoleRequest{Role: types.RoleAdministrator})
	if missing.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", missing.Code)
	}
}

func TestRegistrationIsPublicAndDefaultsToStandard(t *testing.T) {
	env := newAuthTestEnv(t)

	rec := env.do(t, http.MethodPost, "/accounts", "", RegisterRequest{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var account types.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode account: %v", err)
	}
	if account.Role != types.RoleStandard {
		t.Errorf("role = %q, want STANDARD", account.Role)
	}
	if account.PasswordHash != "" {
		t.Error("password hash must never be serialized")
	}
}

func TestUnmatchedRouteRequiresAuthentication(t *testing.T) {
	env := newAuthTestEnv(t)

	// /auth/me matches no policy rule, so the deny-by-default fallback
	// applies.
	rec := env.do(t, http.MethodGet, "/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMeReturnsCurrentAccount(t *testing.T) {
	env := newAuthTestEnv(t)
	account := env.seedAccount(t, "u1@example.com", "secret123", types.RoleStandard)

	resp, rec := env.login(t, "u1@example.com", "secret123")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}

	me := env.do(t, http.MethodGet, "/auth/me", resp.Token, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200", me.Code)
	}

	var got types.Account
	if err := json.Unmarshal(me.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode account: %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("id = %q, want %q", got.ID, account.ID)
	}
}

func TestDeletedAccountTokenIsAnonymous(t *testing.T) {
	env := newAuthTestEnv(t)
	account := env.seedAccount(t, "u1@example.com", "secret123", types.RoleStandard)

	resp, rec := env.login(t, "u1@example.com", "secret123")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}

	if err := env.repo.Delete(context.Background(), account.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	me := env.do(t, http.MethodGet, "/auth/me", resp.Token, nil)
	if me.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", me.Code)
	}
}
