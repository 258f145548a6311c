package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/stillwater/lodge/internal/apperr"
)

const (
	jwksClientTimeout   = 10 * time.Second
	jwksRefreshInterval = 15 * time.Minute
)

// claims are the provider token fields a Session is built from.
type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// JWKSVerifier validates RS256/ES256 tokens against the provider's JWKS.
type JWKSVerifier struct {
	keys     keyfunc.Keyfunc
	issuer   string
	audience string
}

// NewJWKSVerifier fetches signing keys from jwksURL and refreshes them in
// the background for the lifetime of ctx. Startup does not fail when the
// provider is briefly unreachable.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer, audience string, logger *slog.Logger) (*JWKSVerifier, error) {
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: jwksClientTimeout},
		Ctx:                       ctx,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("jwks refresh failed",
				slog.String("url", jwksURL),
				slog.String("error", err.Error()),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create jwks storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("create keyfunc: %w", err)
	}
	return NewVerifierWithKeyfunc(k, issuer, audience), nil
}

// NewVerifierWithKeyfunc builds a verifier around an existing keyfunc.
func NewVerifierWithKeyfunc(k keyfunc.Keyfunc, issuer, audience string) *JWKSVerifier {
	return &JWKSVerifier{keys: k, issuer: issuer, audience: audience}
}

// VerifyCredentials parses token, checks its signature, expiry and the
// configured issuer and audience.
func (v *JWKSVerifier) VerifyCredentials(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperr.Auth("missing token")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, v.keys.KeyfuncCtx(ctx), opts...)
	if err != nil || !parsed.Valid {
		return nil, &apperr.Error{Kind: apperr.KindAuth, Message: "invalid or expired token", Err: err}
	}
	if c.Subject == "" {
		return nil, apperr.Auth("token has no subject")
	}

	s := &Session{Subject: c.Subject, Email: c.Email, Name: c.Name}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s, nil
}
