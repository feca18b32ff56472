package domain

import "strings"

// Identity is the authenticated caller of a request. It is resolved once at the
// transport edge and passed explicitly into every service operation.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Anonymous reports whether the identity carries no subject.
func (i Identity) Anonymous() bool {
	return strings.TrimSpace(i.UserID) == ""
}

// TokenIssuer issues bearer tokens (e.g. JWT) for an identity.
type TokenIssuer interface {
	Issue(id Identity) (string, error)
}

// TokenVerifier verifies a bearer token and returns the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}
