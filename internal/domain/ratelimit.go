package domain

import (
	"context"
	"time"
)

type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitKey identifies one bucket: an organization's budget on one route.
// Budgets are per tenant, never shared across organizations.
type RateLimitKey struct {
	OrganizationID string
	Route          string
}

func (k RateLimitKey) String() string {
	return "org:" + k.OrganizationID + ":endpoint:" + k.Route
}

// RateLimiter applies a fixed-window count to a key. Implementations must be
// safe for concurrent use across requests.
type RateLimiter interface {
	Allow(ctx context.Context, key RateLimitKey, limit int, window time.Duration) (RateLimitDecision, error)
}
