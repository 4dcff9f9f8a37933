package keycloak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWT validation errors.
var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidClaims   = errors.New("invalid claims")
	ErrMissingSubject  = errors.New("missing subject claim")
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")
)

// Claims is the subset of a Keycloak access token the waitlist cares about.
type Claims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Username      string
	Name          string
	// Roles merges realm_access.roles with resource_access.<client>.roles.
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasRole reports whether role was granted either at realm or client level.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// DisplayName picks the best human-readable name from the token.
func (c *Claims) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return c.Username
}

// JWTValidator validates Keycloak JWT tokens.
type JWTValidator interface {
	Validate(ctx context.Context, tokenString string) (*Claims, error)

	// Close stops background JWKS refresh.
	Close() error
}

// JWTValidatorConfig contains configuration for JWTValidator.
type JWTValidatorConfig struct {
	KeycloakURL     string
	Realm           string
	ClientID        string        // expected audience, also the resource_access key
	Leeway          time.Duration // clock skew tolerance
	RefreshInterval time.Duration
	Logger          *slog.Logger
}

// Default configuration values.
const (
	DefaultLeeway          = 30 * time.Second
	DefaultRefreshInterval = 1 * time.Hour
)

type jwtValidator struct {
	jwks      keyfunc.Keyfunc
	config    JWTValidatorConfig
	issuerURL string
	logger    *slog.Logger
	cancel    context.CancelFunc
}

// NewJWTValidator fetches the realm JWKS and keeps it refreshed in the background.
func NewJWTValidator(config JWTValidatorConfig) (JWTValidator, error) {
	if config.KeycloakURL == "" {
		return nil, fmt.Errorf("%w: KeycloakURL is required", ErrJWKSFetchFailed)
	}
	if config.Realm == "" {
		return nil, fmt.Errorf("%w: Realm is required", ErrJWKSFetchFailed)
	}
	if config.Leeway == 0 {
		config.Leeway = DefaultLeeway
	}
	if config.RefreshInterval == 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	issuerURL := IssuerURL(config.KeycloakURL, config.Realm)
	jwksURL := issuerURL + "/protocol/openid-connect/certs"

	logger.Info("initializing JWT validator",
		slog.String("jwks_url", jwksURL),
		slog.Duration("refresh_interval", config.RefreshInterval),
	)

	// ctx owns the refresh goroutine; cancelled in Close.
	ctx, cancel := context.WithCancel(context.Background())

	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Ctx:             ctx,
		RefreshInterval: config.RefreshInterval,
		RefreshErrorHandler: func(_ context.Context, refreshErr error) {
			logger.Error("failed to refresh JWKS", slog.Any("error", refreshErr))
		},
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrJWKSFetchFailed, err)
	}

	jwks, err := keyfunc.New(keyfunc.Options{
		Ctx:     ctx,
		Storage: storage,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrJWKSFetchFailed, err)
	}

	return &jwtValidator{
		jwks:      jwks,
		config:    config,
		issuerURL: issuerURL,
		logger:    logger,
		cancel:    cancel,
	}, nil
}

// IssuerURL builds the realm issuer the way Keycloak puts it into "iss".
func IssuerURL(keycloakURL, realm string) string {
	return strings.TrimRight(keycloakURL, "/") + "/realms/" + realm
}

func (v *jwtValidator) Validate(_ context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithLeeway(v.config.Leeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(v.issuerURL),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384"}),
	}
	if v.config.ClientID != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.config.ClientID))
	}

	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc, parserOpts...)
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	raw, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return extractClaims(raw, v.config.ClientID)
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %w", ErrInvalidIssuer, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %w", ErrInvalidAudience, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}

func extractClaims(raw jwt.MapClaims, clientID string) (*Claims, error) {
	c := &Claims{}

	c.Subject, _ = raw["sub"].(string)
	if strings.TrimSpace(c.Subject) == "" {
		return nil, ErrMissingSubject
	}

	c.Email, _ = raw["email"].(string)
	c.EmailVerified, _ = raw["email_verified"].(bool)
	c.Username, _ = raw["preferred_username"].(string)
	c.Name, _ = raw["name"].(string)

	if realmAccess, ok := raw["realm_access"].(map[string]any); ok {
		c.Roles = appendRoles(c.Roles, realmAccess["roles"])
	}
	if clientID != "" {
		if resourceAccess, ok := raw["resource_access"].(map[string]any); ok {
			if client, clientOK := resourceAccess[clientID].(map[string]any); clientOK {
				c.Roles = appendRoles(c.Roles, client["roles"])
			}
		}
	}

	if iat, err := raw.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := raw.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}

	return c, nil
}

// appendRoles adds string roles from a JSON array, skipping duplicates.
func appendRoles(dst []string, value any) []string {
	list, ok := value.([]any)
	if !ok {
		return dst
	}
	for _, item := range list {
		role, isString := item.(string)
		if !isString || role == "" || slices.Contains(dst, role) {
			continue
		}
		dst = append(dst, role)
	}
	return dst
}

// Close stops background JWKS refresh.
func (v *jwtValidator) Close() error {
	v.logger.Info("closing JWT validator")
	if v.cancel != nil {
		v.cancel()
	}
	return nil
}
