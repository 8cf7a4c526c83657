package domain

import "errors"

// Client input errors.
var (
	ErrMalformedRequest = errors.New("request body is not a valid JSON object")
	ErrMissingTaskName  = errors.New("no task name provided")
	ErrUnresolvedTask   = errors.New("invalid task name")
	ErrJobNotFound      = errors.New("job not found")
)

// Registry misuse.
var (
	ErrDuplicateResolver    = errors.New("resolver already registered")
	ErrIncomparableResolver = errors.New("resolver is not comparable")
)

// Store and worker errors.
var (
	ErrQueueUnavailable  = errors.New("queue store unavailable")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrUnknownTask       = errors.New("unknown task")
)
