package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/waitlist/internal/application/appcore"
	"github.com/lllypuk/waitlist/internal/domain/identity"
)

// Context keys for authentication data.
type contextKey string

const (
	// ContextKeyIdentity is the echo context key holding identity.Identity.
	ContextKeyIdentity contextKey = "identity"
)

// Auth errors.
var (
	ErrMissingAuthHeader       = errors.New("missing authorization header")
	ErrInvalidAuthHeader       = errors.New("invalid authorization header format")
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenExpired            = errors.New("token expired")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// TokenClaims is what a TokenValidator asserts about the caller.
type TokenClaims struct {
	UserID      string
	Username    string
	Email       string
	DisplayName string
	Roles       []string
	IsAdmin     bool
	ExpiresAt   time.Time
}

// Identity converts validated claims into the caller identity seen by use cases.
func (tc *TokenClaims) Identity() identity.Identity {
	return identity.Identity{
		UserID:      tc.UserID,
		Username:    tc.Username,
		Email:       tc.Email,
		DisplayName: tc.DisplayName,
		Roles:       tc.Roles,
		IsAdmin:     tc.IsAdmin,
	}
}

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger         *slog.Logger
	TokenValidator TokenValidator

	// SkipPaths are paths that don't require authentication.
	SkipPaths []string
}

// DefaultAuthConfig returns an AuthConfig with sensible defaults.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Logger:    slog.Default(),
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	}
}

// Auth returns an authentication middleware with the given configuration.
func Auth(config AuthConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if _, ok := skipPaths[path]; ok {
				return next(c)
			}

			token, err := extractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return respondAuthError(c, err)
			}

			if config.TokenValidator == nil {
				config.Logger.Error("token validator not configured")
				return respondAuthError(c, ErrInvalidToken)
			}

			claims, err := config.TokenValidator.ValidateToken(c.Request().Context(), token)
			if err != nil {
				config.Logger.Warn("token validation failed",
					slog.String("error", err.Error()),
					slog.String("path", path),
					slog.String("remote_ip", c.RealIP()),
				)
				return respondAuthError(c, err)
			}
			if strings.TrimSpace(claims.UserID) == "" {
				return respondAuthError(c, ErrInvalidToken)
			}

			enrichContext(c, claims.Identity())

			config.Logger.Debug("user authenticated",
				slog.String("user_id", claims.UserID),
				slog.String("username", claims.Username),
				slog.String("path", path),
			)

			return next(c)
		}
	}
}

// extractBearerToken extracts the token from a Bearer authorization header.
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	const bearerPrefix = "Bearer "
	if len(authHeader) < len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	if token == "" {
		return "", ErrInvalidAuthHeader
	}

	return token, nil
}

// enrichContext stores the identity on the echo context and on the request
// context so that use cases can read it via appcore.GetIdentity.
func enrichContext(c echo.Context, id identity.Identity) {
	c.Set(string(ContextKeyIdentity), id)
	req := c.Request()
	c.SetRequest(req.WithContext(appcore.WithIdentity(req.Context(), id)))
}

// respondAuthError sends an authentication error response.
func respondAuthError(c echo.Context, err error) error {
	code := "UNAUTHORIZED"
	message := "Authentication required"
	status := http.StatusUnauthorized

	switch {
	case errors.Is(err, ErrMissingAuthHeader):
		message = "Missing authorization header"
	case errors.Is(err, ErrInvalidAuthHeader):
		message = "Invalid authorization header format"
	case errors.Is(err, ErrTokenExpired):
		message = "Token has expired"
		code = "TOKEN_EXPIRED"
	case errors.Is(err, ErrInvalidToken):
		message = "Invalid token"
	case errors.Is(err, ErrInsufficientPermissions):
		message = "Insufficient permissions"
		code = "FORBIDDEN"
		status = http.StatusForbidden
	}

	return c.JSON(status, map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// GetIdentity returns the authenticated caller, or a zero identity.
func GetIdentity(c echo.Context) identity.Identity {
	if id, ok := c.Get(string(ContextKeyIdentity)).(identity.Identity); ok {
		return id
	}
	return identity.Identity{}
}

// GetUserID extracts the caller's user ID from the echo context.
func GetUserID(c echo.Context) string {
	return GetIdentity(c).UserID
}

// IsAdmin checks if the current user is a waitlist administrator.
func IsAdmin(c echo.Context) bool {
	return GetIdentity(c).IsAdmin
}

// HasRole checks if the current user has the specified role.
func HasRole(c echo.Context, role string) bool {
	return GetIdentity(c).HasRole(role)
}

// RequireRole returns a middleware that requires the user to have a specific role.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !HasRole(c, role) {
				return respondAuthError(c, ErrInsufficientPermissions)
			}
			return next(c)
		}
	}
}

// RequireAdmin returns a middleware that requires an administrator.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetIdentity(c).IsZero() {
				return respondAuthError(c, ErrMissingAuthHeader)
			}
			if !IsAdmin(c) {
				return respondAuthError(c, ErrInsufficientPermissions)
			}
			return next(c)
		}
	}
}

// Development token prefixes accepted by StaticTokenValidator.
const (
	DevTokenPrefix      = "dev-token-"
	DevAdminTokenPrefix = "dev-admin-"
)

const devTokenLifetime = 24 * time.Hour

// StaticTokenValidator accepts "dev-token-<user_id>" and "dev-admin-<user_id>".
// Mock mode only; never wire it in production.
type StaticTokenValidator struct{}

// NewStaticTokenValidator creates a new static token validator.
func NewStaticTokenValidator() *StaticTokenValidator {
	return &StaticTokenValidator{}
}

// ValidateToken parses a development token.
func (v *StaticTokenValidator) ValidateToken(_ context.Context, token string) (*TokenClaims, error) {
	var (
		userID  string
		isAdmin bool
	)
	switch {
	case strings.HasPrefix(token, DevAdminTokenPrefix):
		userID = strings.TrimPrefix(token, DevAdminTokenPrefix)
		isAdmin = true
	case strings.HasPrefix(token, DevTokenPrefix):
		userID = strings.TrimPrefix(token, DevTokenPrefix)
	default:
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidToken
	}

	roles := []string{"user"}
	if isAdmin {
		roles = append(roles, "admin")
	}

	return &TokenClaims{
		UserID:      userID,
		Username:    "dev-user-" + userID,
		Email:       "dev-" + userID + "@example.com",
		DisplayName: "Dev User " + userID,
		Roles:       roles,
		IsAdmin:     isAdmin,
		ExpiresAt:   time.Now().Add(devTokenLifetime),
	}, nil
}
