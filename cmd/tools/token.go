package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/lllypuk/waitlist/internal/config"
	"github.com/lllypuk/waitlist/internal/domain/identity"
	"github.com/lllypuk/waitlist/internal/infrastructure/auth"
)

var (
	errUserRequired        = errors.New("-user is required")
	errKeycloakTokenIssuer = errors.New("keycloak is enabled; tokens must come from the identity provider")
)

// runToken prints a locally signed token for the given identity. The API
// accepts it when Keycloak is disabled and the same dev secret is configured.
func runToken(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	userID := fs.String("user", "", "user id (token subject)")
	email := fs.String("email", "", "email claim, defaults to <user>@example.com")
	name := fs.String("name", "", "display name claim")
	admin := fs.Bool("admin", false, "grant the admin role")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*userID) == "" {
		return errUserRequired
	}
	if cfg.Keycloak.Enabled {
		return errKeycloakTokenIssuer
	}
	if cfg.IsProduction() {
		return config.ErrDevTokensInProduction
	}

	tokens, err := auth.NewHMACTokens(auth.HMACConfig{
		Secret: cfg.Auth.DevTokenSecret,
		Issuer: cfg.Auth.DevTokenIssuer,
		TTL:    cfg.Auth.DevTokenTTL,
	})
	if err != nil {
		return err
	}

	id := identity.Identity{
		UserID:      *userID,
		Username:    *userID,
		Email:       *email,
		DisplayName: *name,
		Roles:       []string{"user"},
		IsAdmin:     *admin,
	}
	if id.Email == "" {
		id.Email = *userID + "@example.com"
	}
	if id.IsAdmin {
		id.Roles = append(id.Roles, "admin")
	}

	token, err := tokens.Issue(id)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
