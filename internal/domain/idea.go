package domain

import "time"

type IdeaStatus string

const (
	IdeaStatusApproved IdeaStatus = "approved"
	IdeaStatusRejected IdeaStatus = "rejected"
	IdeaStatusPending  IdeaStatus = "pending"
)

func (s IdeaStatus) Valid() bool {
	switch s {
	case IdeaStatusApproved, IdeaStatusRejected, IdeaStatusPending:
		return true
	}
	return false
}

// Idea is a tenant-scoped record. TeamID scopes visibility: a read for
// organization O must only touch rows with TeamID == O.
type Idea struct {
	ID        int64
	Text      string
	Status    IdeaStatus
	CreatorID string
	TeamID    string
	CreatedAt time.Time
}
