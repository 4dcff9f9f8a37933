package appcore

import (
	"context"
	"errors"

	"github.com/lllypuk/waitlist/internal/domain/identity"
)

// Context keys
type contextKey string

const (
	identityKey      contextKey = "identity"
	correlationIDKey contextKey = "correlationID"
)

var (
	ErrIdentityNotFound      = errors.New("identity not found in context")
	ErrCorrelationIDNotFound = errors.New("correlation ID not found in context")
)

// GetIdentity extracts the authenticated caller from the context
func GetIdentity(ctx context.Context) (identity.Identity, error) {
	id, ok := ctx.Value(identityKey).(identity.Identity)
	if !ok || id.IsZero() {
		return identity.Identity{}, ErrIdentityNotFound
	}
	return id, nil
}

// WithIdentity adds the authenticated caller to the context
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetCorrelationID extracts the correlation ID from the context
func GetCorrelationID(ctx context.Context) (string, error) {
	correlationID, ok := ctx.Value(correlationIDKey).(string)
	if !ok {
		return "", ErrCorrelationIDNotFound
	}
	return correlationID, nil
}

// WithCorrelationID adds the correlation ID to the context
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}
