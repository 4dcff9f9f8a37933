//go:build integration

package mongodb_test

import "github.com/lllypuk/waitlist/internal/domain/identity"

func identityFor(userID string) identity.Identity {
	return identity.Identity{UserID: userID}
}
