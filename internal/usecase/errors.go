package usecase

import "errors"

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrMatchNotFound     = errors.New("match result not found")
	ErrJobInactive       = errors.New("job is not active")
	ErrInvalidInput      = errors.New("invalid input")
	// ErrUpstreamUnavailable is never returned to API callers; a fallback always exists.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrPersistence is terminal for a batch. Callers may retry the whole run.
	ErrPersistence  = errors.New("persistence failure")
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
)
