package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gamelog/apiserver/types"
)

// ErrUnauthenticated is returned when a route requires a valid token and
// the request has none.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden is returned when the caller is authenticated but lacks the
// required role.
var ErrForbidden = errors.New("forbidden")

// Level is the access requirement attached to a route.
type Level int

const (
	// LevelPublic allows any request.
	LevelPublic Level = iota

	// LevelAuthenticated allows any request carrying a valid token.
	LevelAuthenticated

	// LevelRole allows only authenticated requests whose role claim
	// exactly matches the rule's role. There is no role hierarchy.
	LevelRole
)

// AccessRule maps (method, path pattern) to a required access level.
// Method "*" matches any method. Patterns are slash-separated segments
// where "*" matches exactly one segment and a trailing "**" matches any
// remainder, including none.
type AccessRule struct {
	Method  string
	Pattern string
	Level   Level
	Role    types.Role
}

// Public builds a rule allowing anonymous access.
func Public(method, pattern string) AccessRule {
	return AccessRule{Method: method, Pattern: pattern, Level: LevelPublic}
}

// Authenticated builds a rule requiring a valid token.
func Authenticated(method, pattern string) AccessRule {
	return AccessRule{Method: method, Pattern: pattern, Level: LevelAuthenticated}
}

// RequireRole builds a rule requiring an exact role match.
func RequireRole(method, pattern string, role types.Role) AccessRule {
	return AccessRule{Method: method, Pattern: pattern, Level: LevelRole, Role: role}
}

// Policy evaluates an ordered rule table with first-match-wins semantics.
// The table is immutable after construction and safe for concurrent use.
// Routes matching no rule require authentication: the default is
// deny-by-default, never silently public.
type Policy struct {
	rules []AccessRule
}

// NewPolicy constructs a Policy from an ordered rule table.
func NewPolicy(rules []AccessRule) *Policy {
	return &Policy{rules: rules}
}

// Authorize decides whether a request may proceed. It returns nil on
// allow, ErrUnauthenticated or ErrForbidden on deny.
func (p *Policy) Authorize(method, path string, res Result) error {
	level, role := p.requirement(method, path)

	switch level {
	case LevelPublic:
		return nil
	case LevelAuthenticated:
		if !res.Authenticated {
			return ErrUnauthenticated
		}
		return nil
	case LevelRole:
		if !res.Authenticated {
			return ErrUnauthenticated
		}
		if res.Role != role {
			return ErrForbidden
		}
		return nil
	default:
		return ErrUnauthenticated
	}
}

// Middleware enforces the policy before the handler runs. Denied requests
// stop here with 401 or 403 and an opaque body.
func (p *Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := p.Authorize(r.Method, r.URL.Path, ResultFrom(r.Context()))
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrForbidden) {
				status = http.StatusForbidden
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"` + err.Error() + `"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Policy) requirement(method, path string) (Level, types.Role) {
	for _, rule := range p.rules {
		if rule.Method != "*" && !strings.EqualFold(rule.Method, method) {
			continue
		}
		if matchPath(rule.Pattern, path) {
			return rule.Level, rule.Role
		}
	}
	return LevelAuthenticated, ""
}

func matchPath(pattern, path string) bool {
	patParts := splitPath(pattern)
	pathParts := splitPath(path)

	for i, part := range patParts {
		if part == "**" {
			return i == len(patParts)-1
		}
		if i >= len(pathParts) {
			return false
		}
		if part != "*" && part != pathParts[i] {
			return false
		}
	}
	return len(patParts) == len(pathParts)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
