// Package identity verifies the bearer tokens issued by the hosted identity
// provider and carries the resulting caller through request contexts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pkordes/mileage-log/internal/domain"
)

// Config holds the token verification settings.
type Config struct {
	// Secret is the HS256 signing secret shared with the identity provider.
	Secret []byte
	// Issuer and Audience are checked only when non-empty.
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Verifier checks HS256 access tokens and extracts the caller's identity.
// It is safe for concurrent use.
type Verifier struct {
	cfg Config
	now func() time.Time
}

// NewVerifier returns a Verifier for cfg. A missing secret is a configuration
// error reported here, at construction, rather than on first use.
func NewVerifier(cfg Config) (*Verifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("identity.NewVerifier: signing secret is required")
	}
	return &Verifier{cfg: cfg, now: time.Now}, nil
}

// WithClock returns a copy of v that uses now when checking exp and nbf.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	cp := *v
	cp.now = now
	return &cp
}

type claims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Verify parses token, checks its signature and time claims (plus issuer and
// audience when configured) and returns the caller. Every failure wraps
// domain.ErrUnauthenticated.
func (v *Verifier) Verify(ctx context.Context, token string) (domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return domain.Identity{}, fmt.Errorf("identity.Verifier.Verify: %w: %w", domain.ErrUnauthenticated, err)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.Leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.cfg.Secret, nil
	}, opts...)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("identity.Verifier.Verify: %w: %w", domain.ErrUnauthenticated, err)
	}
	if strings.TrimSpace(c.Subject) == "" {
		return domain.Identity{}, fmt.Errorf("identity.Verifier.Verify: %w: missing sub", domain.ErrUnauthenticated)
	}

	return domain.Identity{UserID: c.Subject, DisplayName: displayName(c)}, nil
}

// displayName prefers user_metadata.full_name, then user_metadata.name, then
// the email address.
func displayName(c claims) string {
	for _, key := range []string{"full_name", "name"} {
		if s, ok := c.UserMetadata[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return strings.TrimSpace(c.Email)
}
