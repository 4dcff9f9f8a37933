package middleware

import (
	"context"
	"errors"
	"slices"

	"github.com/lllypuk/waitlist/internal/infrastructure/auth"
	"github.com/lllypuk/waitlist/internal/infrastructure/keycloak"
)

// KeycloakValidatorAdapter adapts keycloak.JWTValidator to TokenValidator.
type KeycloakValidatorAdapter struct {
	validator  keycloak.JWTValidator
	adminRoles []string
}

// AdapterOption configures KeycloakValidatorAdapter.
type AdapterOption func(*KeycloakValidatorAdapter)

// WithAdminRoles sets the roles that grant access to admin endpoints.
func WithAdminRoles(roles ...string) AdapterOption {
	return func(a *KeycloakValidatorAdapter) {
		a.adminRoles = roles
	}
}

// NewKeycloakValidatorAdapter wraps validator. It panics on nil.
func NewKeycloakValidatorAdapter(validator keycloak.JWTValidator, opts ...AdapterOption) *KeycloakValidatorAdapter {
	if validator == nil {
		panic("keycloak validator is required")
	}

	adapter := &KeycloakValidatorAdapter{
		validator:  validator,
		adminRoles: []string{"admin", "waitlist-admin"},
	}
	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// ValidateToken implements TokenValidator.
func (a *KeycloakValidatorAdapter) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	kc, err := a.validator.Validate(ctx, token)
	if err != nil {
		return nil, mapKeycloakError(err)
	}

	return &TokenClaims{
		// sub from Keycloak is the stable user id on the waitlist
		UserID:      kc.Subject,
		Username:    kc.Username,
		Email:       kc.Email,
		DisplayName: kc.DisplayName(),
		Roles:       kc.Roles,
		IsAdmin:     a.isAdmin(kc.Roles),
		ExpiresAt:   kc.ExpiresAt,
	}, nil
}

func (a *KeycloakValidatorAdapter) isAdmin(roles []string) bool {
	for _, role := range a.adminRoles {
		if slices.Contains(roles, role) {
			return true
		}
	}
	return false
}

func mapKeycloakError(err error) error {
	switch {
	case errors.Is(err, keycloak.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, keycloak.ErrInvalidToken),
		errors.Is(err, keycloak.ErrInvalidClaims),
		errors.Is(err, keycloak.ErrMissingSubject),
		errors.Is(err, keycloak.ErrInvalidIssuer),
		errors.Is(err, keycloak.ErrInvalidAudience):
		return ErrInvalidToken
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}

// Close closes the underlying keycloak validator.
func (a *KeycloakValidatorAdapter) Close() error {
	return a.validator.Close()
}

// HMACValidatorAdapter adapts locally signed dev tokens to TokenValidator.
type HMACValidatorAdapter struct {
	tokens *auth.HMACTokens
}

// NewHMACValidatorAdapter wraps tokens.
func NewHMACValidatorAdapter(tokens *auth.HMACTokens) *HMACValidatorAdapter {
	return &HMACValidatorAdapter{tokens: tokens}
}

// ValidateToken implements TokenValidator.
func (a *HMACValidatorAdapter) ValidateToken(_ context.Context, token string) (*TokenClaims, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	id := claims.Identity()
	tc := &TokenClaims{
		UserID:      id.UserID,
		Username:    id.Username,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		Roles:       id.Roles,
		IsAdmin:     id.IsAdmin,
	}
	if claims.ExpiresAt != nil {
		tc.ExpiresAt = claims.ExpiresAt.Time
	}
	return tc, nil
}
