package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role classifies what kind of account a token belongs to.
type Role string

const (
	RolePatient  Role = "patient"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Caller is the resolved identity behind a request.
type Caller struct {
	ID   string
	Role Role
}

var (
	// ErrInvalidToken is returned when a token fails parsing or signature checks.
	ErrInvalidToken = errors.New("identity: invalid token")
	// ErrMissingSecret is returned when the resolver has no signing secret configured.
	ErrMissingSecret = errors.New("identity: signing secret not configured")
)

type claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Resolver resolves bearer tokens to callers using an HMAC-signed JWT.
type Resolver struct {
	secret []byte
}

// NewResolver creates a resolver for the given shared secret.
func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

// Resolve parses and verifies a token, returning the caller it identifies.
func (r *Resolver) Resolve(tokenString string) (Caller, error) {
	if len(r.secret) == 0 {
		return Caller{}, ErrMissingSecret
	}
	parsed := claims{}
	token, err := jwt.ParseWithClaims(tokenString, &parsed, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return r.secret, nil
	})
	if err != nil || !token.Valid {
		return Caller{}, ErrInvalidToken
	}
	if parsed.Subject == "" {
		return Caller{}, ErrInvalidToken
	}
	role := Role(parsed.Role)
	switch role {
	case RolePatient, RoleProvider, RoleAdmin:
	default:
		role = RolePatient
	}
	return Caller{ID: parsed.Subject, Role: role}, nil
}

// Mint issues a signed token for the given caller, used by tests and dev tooling.
func (r *Resolver) Mint(caller Caller, ttl time.Duration) (string, error) {
	if len(r.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(caller.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("identity: sign token: %w", err)
	}
	return signed, nil
}

type ctxKey string

const callerKey ctxKey = "clinic.caller"

// WithCaller stores the caller in context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext extracts the caller if present.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey).(Caller)
	return caller, ok && caller.ID != ""
}
