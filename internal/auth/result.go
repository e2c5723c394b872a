package auth

import (
	"context"

	"github.com/gamelog/apiserver/types"
)

// Result is the per-request authentication outcome. It is created at most
// once per request by the Authenticator, read by the policy and handlers,
// and discarded at request end.
type Result struct {
	// Subject is the authenticated account's identifier, empty for
	// anonymous requests.
	Subject string

	// Role is the role claim carried by the validated token.
	Role types.Role

	// Authenticated reports whether a valid token resolved to a live
	// account.
	Authenticated bool
}

// Anonymous is the result for requests with no usable credentials.
func Anonymous() Result {
	return Result{}
}

type contextKey string

const resultContextKey contextKey = "auth.result"

// WithResult returns a context carrying the authentication result.
func WithResult(ctx context.Context, res Result) context.Context {
	return context.WithValue(ctx, resultContextKey, res)
}

// ResultFrom extracts the authentication result from the context. Requests
// that did not pass through the Authenticator read as anonymous.
func ResultFrom(ctx context.Context) Result {
	if res, ok := ctx.Value(resultContextKey).(Result); ok {
		return res
	}
	return Anonymous()
}
