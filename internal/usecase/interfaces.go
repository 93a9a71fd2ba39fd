package usecase

import (
	"context"

	"squircle/internal/domain"
)

type IdeaRepository interface {
	Create(ctx context.Context, idea domain.Idea) (domain.Idea, error)
	Delete(ctx context.Context, ideaID int64, teamID string) (domain.Idea, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.Idea, error)
}

// MemberDirectory is the identity service's member surface. Role state lives
// there, not locally; these calls are the only way membership changes.
type MemberDirectory interface {
	GetMember(ctx context.Context, organizationID, memberID string) (*domain.Member, error)
	UpdateMemberRoles(ctx context.Context, organizationID, memberID string, roleIDs []string) (*domain.Member, error)
	InviteByEmail(ctx context.Context, organizationID, emailAddress string) error
	SearchMembers(ctx context.Context, organizationID string) ([]domain.Member, error)
}
