// Package auth provides credential sources for outbound backend
// requests. A TokenSource yields the bearer token the transport adapter
// attaches as the Authorization header.
//
// Two sources exist: a static token (API key style), and an HS256 JWT
// signer for backends fronted by a gateway that validates shared-secret
// JWTs. Minted tokens are cached until shortly before expiry.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenSource yields a bearer credential. Implementations must be safe
// for concurrent use; independent conversations share one source.
type TokenSource interface {
	// Token returns the current credential, refreshing it if needed.
	// An empty string with a nil error means "no credential" and the
	// Authorization header is omitted.
	Token(ctx context.Context) (string, error)
}

// staticTokenSource returns a fixed token on every call.
type staticTokenSource struct {
	token string
}

// StaticTokenSource returns a TokenSource that always yields the given
// token. An empty token disables authentication.
func StaticTokenSource(token string) TokenSource {
	return &staticTokenSource{token: token}
}

func (s *staticTokenSource) Token(_ context.Context) (string, error) {
	return s.token, nil
}

// JWTConfig holds the JWT signer configuration.
type JWTConfig struct {
	// Secret is the HMAC shared secret. Required.
	Secret string

	// Issuer is set as the iss claim. Optional.
	Issuer string

	// Audience is set as the aud claim. Optional.
	Audience string

	// Subject is set as the sub claim. Optional.
	Subject string

	// TTL is the token lifetime. Default: 5 minutes.
	TTL time.Duration
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *JWTConfig) applyDefaults() {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
}

// refreshSkew is how long before expiry a cached token is discarded.
const refreshSkew = 30 * time.Second

// JWTSigner mints HS256-signed JWTs and caches them until shortly
// before expiry.
type JWTSigner struct {
	cfg JWTConfig

	// now is injectable for tests.
	now func() time.Time

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

// Ensure JWTSigner implements TokenSource at compile time.
var _ TokenSource = (*JWTSigner)(nil)

// NewJWTSigner creates a JWT token source from the given configuration.
func NewJWTSigner(cfg JWTConfig) (*JWTSigner, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt signer: secret must not be empty")
	}
	cfg.applyDefaults()
	return &JWTSigner{cfg: cfg, now: time.Now}, nil
}

// Token returns a valid signed token, minting a fresh one when the
// cached token is missing or within the refresh skew of expiry.
func (s *JWTSigner) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.cached != "" && now.Before(s.expiresAt.Add(-refreshSkew)) {
		return s.cached, nil
	}

	expiresAt := now.Add(s.cfg.TTL)
	claims := jwtlib.RegisteredClaims{
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(expiresAt),
	}
	if s.cfg.Issuer != "" {
		claims.Issuer = s.cfg.Issuer
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwtlib.ClaimStrings{s.cfg.Audience}
	}
	if s.cfg.Subject != "" {
		claims.Subject = s.cfg.Subject
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	s.cached = signed
	s.expiresAt = expiresAt
	return signed, nil
}
