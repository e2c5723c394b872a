package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gamelog/apiserver/types"
)

// AccountResolver resolves a token subject to a live account. Used to drop
// tokens whose account was deleted after issuance.
type AccountResolver interface {
	GetByID(ctx context.Context, id string) (types.Account, error)
}

// Authenticator turns bearer tokens into request-scoped auth results. It
// never rejects a request: every failure degrades to anonymous and the
// request continues to the authorization policy, which may still allow it
// on public routes.
type Authenticator struct {
	codec    *TokenCodec
	resolver AccountResolver
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(codec *TokenCodec, resolver AccountResolver) *Authenticator {
	return &Authenticator{
		codec:    codec,
		resolver: resolver,
	}
}

// Middleware authenticates the request and stores the result in its context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := a.authenticate(r)
		next.ServeHTTP(w, r.WithContext(WithResult(r.Context(), res)))
	})
}

func (a *Authenticator) authenticate(r *http.Request) Result {
	tokenString, err := bearerToken(r)
	if err != nil {
		return Anonymous()
	}

	subject, role, err := a.codec.Validate(tokenString)
	if err != nil {
		return Anonymous()
	}

	// The lookup only confirms the account still exists; the role claim
	// from the token is what authorizes this request. A role change does
	// not retroactively affect tokens issued before it.
	if _, err := a.resolver.GetByID(r.Context(), subject); err != nil {
		return Anonymous()
	}

	return Result{
		Subject:       subject,
		Role:          role,
		Authenticated: true,
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
