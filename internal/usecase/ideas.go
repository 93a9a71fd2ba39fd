package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"squircle/internal/domain"
)

var ErrInvalidIdea = errors.New("invalid idea")

// IdeaService is the tenant-scoped CRUD surface over the idea store. It runs
// only behind the session gate; the principal's organization id is the sole
// source of the team scope.
type IdeaService struct {
	Ideas IdeaRepository
	Now   func() time.Time
}

func (s *IdeaService) Add(ctx context.Context, principal domain.Principal, text string, status domain.IdeaStatus) (domain.Idea, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Idea{}, ErrInvalidIdea
	}
	if status == "" {
		status = domain.IdeaStatusPending
	}
	if !status.Valid() {
		return domain.Idea{}, ErrInvalidIdea
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Ideas.Create(ctx, domain.Idea{
		Text:      text,
		Status:    status,
		CreatorID: principal.MemberID,
		TeamID:    principal.OrganizationID,
		CreatedAt: now().UTC(),
	})
}

func (s *IdeaService) Delete(ctx context.Context, principal domain.Principal, ideaID int64) (domain.Idea, error) {
	return s.Ideas.Delete(ctx, ideaID, principal.OrganizationID)
}

func (s *IdeaService) List(ctx context.Context, principal domain.Principal) ([]domain.Idea, error) {
	return s.Ideas.ListByTeam(ctx, principal.OrganizationID)
}
