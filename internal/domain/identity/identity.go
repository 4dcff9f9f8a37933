// Package identity describes the authenticated caller as asserted by the
// identity provider. The core never creates or mutates identities.
package identity

import "strings"

// Identity is the authenticated caller
type Identity struct {
	UserID      string
	Username    string
	Email       string
	DisplayName string
	Roles       []string
	IsAdmin     bool
}

// IsZero reports whether no caller is present
func (i Identity) IsZero() bool {
	return strings.TrimSpace(i.UserID) == ""
}

// HasRole reports whether the identity carries role
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
