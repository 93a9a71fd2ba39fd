package db

import "time"

type IdeaModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Text      string    `gorm:"not null"`
	Status    string    `gorm:"not null"`
	CreatorID string    `gorm:"not null"`
	TeamID    string    `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (IdeaModel) TableName() string {
	return "ideas"
}
