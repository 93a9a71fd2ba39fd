package db

import (
	"context"

	"squircle/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdeaRepository struct {
	db *gorm.DB
}

func NewIdeaRepository(db *gorm.DB) *IdeaRepository {
	return &IdeaRepository{db: db}
}

func (r *IdeaRepository) Create(ctx context.Context, idea domain.Idea) (domain.Idea, error) {
	if r.db == nil {
		return domain.Idea{}, domain.ErrUpstreamUnavailable
	}
	model := IdeaModel{
		Text:      idea.Text,
		Status:    string(idea.Status),
		CreatorID: idea.CreatorID,
		TeamID:    idea.TeamID,
		CreatedAt: idea.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Idea{}, err
	}
	return ideaFromModel(model), nil
}

// Delete removes an idea only when it belongs to teamID. Records outside the
// caller's organization are invisible, including for deletion by id. The
// delete is a single scoped statement so a concurrent removal cannot race a
// separate lookup; zero affected rows maps to not-found.
func (r *IdeaRepository) Delete(ctx context.Context, ideaID int64, teamID string) (domain.Idea, error) {
	if r.db == nil {
		return domain.Idea{}, domain.ErrUpstreamUnavailable
	}
	var model IdeaModel
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ? AND team_id = ?", ideaID, teamID).
		Delete(&model)
	if result.Error != nil {
		return domain.Idea{}, result.Error
	}
	if result.RowsAffected == 0 {
		return domain.Idea{}, domain.ErrNotFound
	}
	return ideaFromModel(model), nil
}

func (r *IdeaRepository) ListByTeam(ctx context.Context, teamID string) ([]domain.Idea, error) {
	if r.db == nil {
		return nil, domain.ErrUpstreamUnavailable
	}
	var models []IdeaModel
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	ideas := make([]domain.Idea, 0, len(models))
	for _, model := range models {
		ideas = append(ideas, ideaFromModel(model))
	}
	return ideas, nil
}

func ideaFromModel(model IdeaModel) domain.Idea {
	return domain.Idea{
		ID:        model.ID,
		Text:      model.Text,
		Status:    domain.IdeaStatus(model.Status),
		CreatorID: model.CreatorID,
		TeamID:    model.TeamID,
		CreatedAt: model.CreatedAt,
	}
}
