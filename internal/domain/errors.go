package domain

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInsufficientFactors = errors.New("insufficient authentication factors")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrUpdateRejected      = errors.New("member update rejected")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
