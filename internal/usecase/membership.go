package usecase

import (
	"context"
	"errors"
	"strings"

	"squircle/internal/domain"
)

var ErrInvalidEmail = errors.New("invalid email address")

// MembershipService performs the privileged member mutations. Callers must
// already have passed the request gate for the corresponding action; this
// layer only implements the mutation semantics.
type MembershipService struct {
	Directory MemberDirectory
}

// ToggleAdminRole flips the administrator role on the target member: remove
// it when present, add it when absent, leaving all other roles untouched.
// Applying it twice restores the original role set unless the identity
// service rejects one of the updates (e.g. removing the last administrator).
func (s *MembershipService) ToggleAdminRole(ctx context.Context, actor domain.Principal, targetMemberID string) (*domain.Member, error) {
	if targetMemberID == "" {
		return nil, domain.ErrNotFound
	}
	if targetMemberID == actor.MemberID {
		// Members cannot change their own role assignments.
		return nil, domain.ErrForbidden
	}
	// Target lookup is scoped to the actor's organization, so a member id
	// from another tenant resolves to not-found rather than a cross-org edit.
	target, err := s.Directory.GetMember(ctx, actor.OrganizationID, targetMemberID)
	if err != nil {
		return nil, err
	}

	roles := make([]string, 0, len(target.Roles)+1)
	had := false
	for _, role := range target.Roles {
		if role.RoleID == domain.AdminRoleID {
			had = true
			continue
		}
		roles = append(roles, role.RoleID)
	}
	if !had {
		roles = append(roles, domain.AdminRoleID)
	}

	return s.Directory.UpdateMemberRoles(ctx, actor.OrganizationID, target.MemberID, roles)
}

func (s *MembershipService) InviteMember(ctx context.Context, actor domain.Principal, emailAddress string) error {
	emailAddress = strings.TrimSpace(emailAddress)
	if emailAddress == "" || !strings.Contains(emailAddress, "@") {
		return ErrInvalidEmail
	}
	return s.Directory.InviteByEmail(ctx, actor.OrganizationID, emailAddress)
}

func (s *MembershipService) ListMembers(ctx context.Context, actor domain.Principal) ([]domain.Member, error) {
	return s.Directory.SearchMembers(ctx, actor.OrganizationID)
}
