package auth

import (
	"errors"
	"testing"

	"github.com/gamelog/apiserver/types"
)

func testRules() []AccessRule {
	return []AccessRule{
		Public("POST", "/auth/login"),
		Public("POST", "/accounts"),
		Public("GET", "/games/**"),
		RequireRole("*", "/admin/**", types.RoleAdministrator),
		RequireRole("POST", "/games/**", types.RoleAdministrator),
		Authenticated("GET", "/library"),
	}
}

func TestAuthorize(t *testing.T) {
	policy := NewPolicy(testRules())

	anonymous := Anonymous()
	standard := Result{Subject: "u1", Role: types.RoleStandard, Authenticated: true}
	admin := Result{Subject: "a1", Role: types.RoleAdministrator, Authenticated: true}

	cases := []struct {
		name   string
		method string
		path   string
		res    Result
		want   error
	}{
		{"public login anonymous", "POST", "/auth/login", anonymous, nil},
		{"public registration anonymous", "POST", "/accounts", anonymous, nil},
		{"public game read anonymous", "GET", "/games/abc", anonymous, nil},
		{"public game read nested", "GET", "/games/abc/cover", anonymous, nil},
		{"public game list", "GET", "/games", anonymous, nil},
		{"game write anonymous", "POST", "/games", anonymous, ErrUnauthenticated},
		{"game write standard", "POST", "/games", standard, ErrForbidden},
		{"game write admin", "POST", "/games", admin, nil},
		{"admin route anonymous", "PUT", "/admin/accounts/u1/role", anonymous, ErrUnauthenticated},
		{"admin route standard", "PUT", "/admin/accounts/u1/role", standard, ErrForbidden},
		{"admin route admin", "PUT", "/admin/accounts/u1/role", admin, nil},
		{"authenticated route anonymous", "GET", "/library", anonymous, ErrUnauthenticated},
		{"authenticated route standard", "GET", "/library", standard, nil},
		{"unmatched route defaults to authenticated", "GET", "/reviews", anonymous, ErrUnauthenticated},
		{"unmatched route allows any principal", "GET", "/reviews", standard, nil},
		{"method mismatch falls through", "GET", "/auth/login", anonymous, ErrUnauthenticated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Authorize(tc.method, tc.path, tc.res)
			if !errors.Is(err, tc.want) {
				t.Fatalf("authorize(%s %s) = %v, want %v", tc.method, tc.path, err, tc.want)
			}
		})
	}
}

func TestAuthorizeIsDeterministic(t *testing.T) {
	policy := NewPolicy(testRules())
	standard := Result{Subject: "u1", Role: types.RoleStandard, Authenticated: true}

	first := policy.Authorize("POST", "/games", standard)
	for i := 0; i < 100; i++ {
		if got := policy.Authorize("POST", "/games", standard); !errors.Is(got, first) {
			t.Fatalf("iteration %d: got %v, want %v", i, got, first)
		}
	}
}

func TestFirstMatchWins(t *testing.T) {
	// An earlier PUBLIC rule shadows a later role rule on the same path.
	policy := NewPolicy([]AccessRule{
		Public("GET", "/games/**"),
		RequireRole("GET", "/games/**", types.RoleAdministrator),
	})

	if err := policy.Authorize("GET", "/games/x", Anonymous()); err != nil {
		t.Fatalf("expected first matching rule to win, got %v", err)
	}
}

func TestNoRoleHierarchy(t *testing.T) {
	policy := NewPolicy([]AccessRule{
		RequireRole("GET", "/standard-only", types.RoleStandard),
	})
	admin := Result{Subject: "a1", Role: types.RoleAdministrator, Authenticated: true}

	// ADMINISTRATOR does not implicitly satisfy a STANDARD requirement.
	if err := policy.Authorize("GET", "/standard-only", admin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMatchPath(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/auth/login", "/auth/login", true},
		{"/auth/login", "/auth/login/", true},
		{"/auth/login", "/auth", false},
		{"/auth/login", "/auth/login/extra", false},
		{"/games/**", "/games", true},
		{"/games/**", "/games/abc", true},
		{"/games/**", "/games/abc/cover", true},
		{"/games/**", "/reviews", false},
		{"/admin/accounts/*/role", "/admin/accounts/u1/role", true},
		{"/admin/accounts/*/role", "/admin/accounts/u1/x/role", false},
		{"/admin/accounts/*/role", "/admin/accounts/role", false},
		{"/**", "/anything/at/all", true},
	}

	for _, tc := range cases {
		if got := matchPath(tc.pattern, tc.path); got != tc.want {
			t.Errorf("matchPath(%q, %q) = %v, want %v", tc.pattern, tc.path, got, tc.want)
		}
	}
}
