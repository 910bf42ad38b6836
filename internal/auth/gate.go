package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nerrad567/bookshelf/internal/infrastructure/config"
)

// CookieName is the cookie that carries an access token for browser clients.
const CookieName = "bookshelf_token"

// Gate decides whether a request may proceed.
// Authorize returns nil to allow the request and an error to deny it.
type Gate interface {
	Authorize(r *http.Request) error
}

// OpenGate allows every request.
type OpenGate struct{}

// Authorize always returns nil.
func (OpenGate) Authorize(*http.Request) error { return nil }

// TokenGate allows requests that carry a valid access token.
type TokenGate struct {
	secret string
}

// NewTokenGate creates a gate that validates tokens signed with secret.
func NewTokenGate(secret string) *TokenGate {
	return &TokenGate{secret: secret}
}

// Authorize validates the request's bearer token or token cookie.
// Denials wrap ErrUnauthorized.
func (g *TokenGate) Authorize(r *http.Request) error {
	raw, err := TokenFromRequest(r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if _, err := ParseToken(raw, g.secret); err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return nil
}

// TokenFromRequest extracts the access token from the Authorization header,
// falling back to the token cookie.
func TokenFromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", fmt.Errorf("%w: malformed authorization header", ErrTokenInvalid)
		}
		return strings.TrimSpace(token), nil
	}

	c, err := r.Cookie(CookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrTokenMissing
		}
		return "", fmt.Errorf("reading token cookie: %w", err)
	}
	if c.Value == "" {
		return "", ErrTokenMissing
	}
	return c.Value, nil
}

// NewGate builds the gate selected by the security configuration.
func NewGate(cfg config.SecurityConfig) (Gate, error) {
	switch cfg.Gate.Mode {
	case "", config.GateOpen:
		return OpenGate{}, nil
	case config.GateToken:
		if cfg.JWT.Secret == "" {
			return nil, errors.New("token gate requires a jwt secret")
		}
		return NewTokenGate(cfg.JWT.Secret), nil
	default:
		return nil, fmt.Errorf("unknown gate mode %q", cfg.Gate.Mode)
	}
}

// CredentialsFromConfig returns the admin credentials configured for login.
func CredentialsFromConfig(cfg config.AdminConfig) Credentials {
	return Credentials{
		Username:     cfg.Username,
		Password:     cfg.Password,
		PasswordHash: cfg.PasswordHash,
	}
}
