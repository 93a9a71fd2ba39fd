package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"squircle/internal/domain"
)

type memIdeaRepo struct {
	nextID int64
	ideas  []domain.Idea
}

func (r *memIdeaRepo) Create(_ context.Context, idea domain.Idea) (domain.Idea, error) {
	r.nextID++
	idea.ID = r.nextID
	r.ideas = append(r.ideas, idea)
	return idea, nil
}

func (r *memIdeaRepo) Delete(_ context.Context, ideaID int64, teamID string) (domain.Idea, error) {
	for i, idea := range r.ideas {
		if idea.ID == ideaID && idea.TeamID == teamID {
			r.ideas = append(r.ideas[:i], r.ideas[i+1:]...)
			return idea, nil
		}
	}
	return domain.Idea{}, domain.ErrNotFound
}

func (r *memIdeaRepo) ListByTeam(_ context.Context, teamID string) ([]domain.Idea, error) {
	var out []domain.Idea
	for _, idea := range r.ideas {
		if idea.TeamID == teamID {
			out = append(out, idea)
		}
	}
	return out, nil
}

func ideaPrincipal(org string) domain.Principal {
	return domain.Principal{MemberID: "member-1", OrganizationID: org}
}

func TestAddIdeaDefaults(t *testing.T) {
	repo := &memIdeaRepo{}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := &IdeaService{Ideas: repo, Now: func() time.Time { return now }}

	idea, err := svc.Add(context.Background(), ideaPrincipal("org-1"), "  build a moat  ", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if idea.Text != "build a moat" {
		t.Fatalf("text = %q, want trimmed", idea.Text)
	}
	if idea.Status != domain.IdeaStatusPending {
		t.Fatalf("status = %q, want pending default", idea.Status)
	}
	if idea.CreatorID != "member-1" || idea.TeamID != "org-1" {
		t.Fatalf("creator/team = %q/%q", idea.CreatorID, idea.TeamID)
	}
	if !idea.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", idea.CreatedAt, now)
	}
}

func TestAddIdeaValidation(t *testing.T) {
	svc := &IdeaService{Ideas: &memIdeaRepo{}}

	if _, err := svc.Add(context.Background(), ideaPrincipal("org-1"), "   ", ""); !errors.Is(err, ErrInvalidIdea) {
		t.Fatalf("err = %v, want ErrInvalidIdea for blank text", err)
	}
	if _, err := svc.Add(context.Background(), ideaPrincipal("org-1"), "ok", "shipped"); !errors.Is(err, ErrInvalidIdea) {
		t.Fatalf("err = %v, want ErrInvalidIdea for unknown status", err)
	}
}

func TestListIdeasScopedToTeam(t *testing.T) {
	repo := &memIdeaRepo{}
	svc := &IdeaService{Ideas: repo}
	if _, err := svc.Add(context.Background(), ideaPrincipal("org-1"), "ours", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Add(context.Background(), ideaPrincipal("org-2"), "theirs", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ideas, err := svc.List(context.Background(), ideaPrincipal("org-1"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ideas) != 1 || ideas[0].TeamID != "org-1" {
		t.Fatalf("listing leaked across teams: %+v", ideas)
	}
}

func TestDeleteIdeaScopedToTeam(t *testing.T) {
	repo := &memIdeaRepo{}
	svc := &IdeaService{Ideas: repo}
	other, err := svc.Add(context.Background(), ideaPrincipal("org-2"), "theirs", "")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Delete(context.Background(), ideaPrincipal("org-1"), other.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for cross-team delete", err)
	}
	if len(repo.ideas) != 1 {
		t.Fatal("cross-team delete removed the record")
	}
}
