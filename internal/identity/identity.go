// Package identity verifies sessions issued by the external identity provider.
// Credentials are never checked locally: a token is either verified against
// the provider's signing keys or rejected.
package identity

import (
	"context"
	"time"
)

// Session is the verified identity behind a request.
type Session struct {
	Subject   string    `json:"subject"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Verifier checks credentials presented by a client.
type Verifier interface {
	// VerifyCredentials validates a bearer token and returns its session.
	VerifyCredentials(ctx context.Context, token string) (*Session, error)
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// CurrentSession returns the session placed on ctx by the auth middleware.
func CurrentSession(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
