package domain

import "context"

// Principal is the authenticated identity attached to a request after the
// session gate admits it. It is issued by the identity service at
// authentication time, immutable for the lifetime of the request, and never
// persisted locally.
type Principal struct {
	MemberID       string
	OrganizationID string
	EmailAddress   string
	Roles          []string
}

// Authenticator validates an opaque session credential against the identity
// service and applies the local authentication-factor policy on top of
// provider-level validity.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionToken string) (Principal, error)
}

// Authorizer answers whether a principal may perform an action on a resource
// type. Implementations delegate the decision and return false, never an
// error, when the check is denied or cannot be evaluated.
type Authorizer interface {
	IsAuthorized(ctx context.Context, sessionToken string, principal Principal, resourceType, action string) bool
}
