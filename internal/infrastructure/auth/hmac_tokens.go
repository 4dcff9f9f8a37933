// Package auth issues and verifies locally signed HS256 tokens. They stand in
// for Keycloak in development and integration environments.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lllypuk/waitlist/internal/domain/identity"
)

// Token errors.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrSecretTooShort = errors.New("hmac secret must be at least 32 bytes")
)

const (
	minSecretLength = 32

	DefaultIssuer   = "waitlist-dev"
	DefaultTokenTTL = 12 * time.Hour
)

// Claims is the payload of a locally signed token.
type Claims struct {
	jwt.RegisteredClaims

	Username string   `json:"preferred_username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Name     string   `json:"name,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Admin    bool     `json:"admin,omitempty"`
}

// Identity converts the claims into the caller identity.
func (c *Claims) Identity() identity.Identity {
	return identity.Identity{
		UserID:      c.Subject,
		Username:    c.Username,
		Email:       c.Email,
		DisplayName: c.Name,
		Roles:       c.Roles,
		IsAdmin:     c.Admin,
	}
}

// HMACConfig configures HMACTokens.
type HMACConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// HMACTokens signs and verifies HS256 tokens with a shared secret.
type HMACTokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACTokens validates the config and applies defaults.
func NewHMACTokens(cfg HMACConfig) (*HMACTokens, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	return &HMACTokens{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue signs a token asserting id.
func (h *HMACTokens) Issue(id identity.Identity) (string, error) {
	if id.IsZero() {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	now := h.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    h.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
		Username: id.Username,
		Email:    id.Email,
		Name:     id.DisplayName,
		Roles:    id.Roles,
		Admin:    id.IsAdmin,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, issuer and expiry of token.
func (h *HMACTokens) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
