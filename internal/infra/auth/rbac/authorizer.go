package rbac

import (
	"context"

	"squircle/internal/domain"

	"github.com/rs/zerolog"
)

// Resource and action identifiers the identity service's RBAC model uses.
const (
	ResourceMember       = "stytch.member"
	ResourceOrganization = "stytch.organization"

	ActionCreate = "create"
	ActionUpdate = "update"

	ActionUpdateSettingsJIT                = "update.settings.sso-jit-provisioning"
	ActionUpdateSettingsEmailInvites       = "update.settings.email-invites"
	ActionUpdateSettingsAllowedDomains     = "update.settings.allowed-domains"
	ActionUpdateSettingsAllowedAuthMethods = "update.settings.allowed-auth-methods"
)

// PermissionAPI is the delegated permission check on the identity service.
type PermissionAPI interface {
	CheckPermission(ctx context.Context, sessionToken, organizationID, resourceType, action string) (bool, error)
}

// Authorizer answers permission questions by delegating to the identity
// service. It is a pure query for a fixed upstream state: no mutation, no
// local caching, safe to call multiple times per request.
type Authorizer struct {
	api PermissionAPI
	log zerolog.Logger
}

func NewAuthorizer(api PermissionAPI, log zerolog.Logger) *Authorizer {
	return &Authorizer{api: api, log: log}
}

func (a *Authorizer) IsAuthorized(ctx context.Context, sessionToken string, principal domain.Principal, resourceType, action string) bool {
	if a == nil || a.api == nil {
		return false
	}
	if principal.MemberID == "" || principal.OrganizationID == "" {
		return false
	}
	authorized, err := a.api.CheckPermission(ctx, sessionToken, principal.OrganizationID, resourceType, action)
	if err != nil {
		a.log.Debug().
			Err(err).
			Str("resource", resourceType).
			Str("action", action).
			Msg("permission check failed; denying")
		return false
	}
	return authorized
}

// IsOrgAdmin is a local set-membership test against the distinguished
// administrator role. It does not call the identity service and must stay
// consistent with the provider's role-naming convention.
func IsOrgAdmin(principal domain.Principal) bool {
	for _, role := range principal.Roles {
		if role == domain.AdminRoleID {
			return true
		}
	}
	return false
}
