package domain

import (
	"encoding/json"
	"time"
)

type JobStatus string

const (
	StatusQueued   JobStatus = "queued"
	StatusStarted  JobStatus = "started"
	StatusFinished JobStatus = "finished"
	StatusFailed   JobStatus = "failed"
)

// Terminal reports whether no further transition can leave s.
func (s JobStatus) Terminal() bool {
	return s == StatusFinished || s == StatusFailed
}

// CanTransition reports whether a job in status s may move to next.
// A started job may be started again when the queue redelivers it.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case StatusQueued:
		return next == StatusStarted
	case StatusStarted:
		return next == StatusStarted || next == StatusFinished || next == StatusFailed
	default:
		return false
	}
}

func (s JobStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusStarted, StatusFinished, StatusFailed:
		return true
	}
	return false
}

// Job is a resolved task handed to the queue. Status, Result and Error are
// written by workers only.
type Job struct {
	ID         string          `json:"id"`
	Target     string          `json:"target"`
	Args       map[string]any  `json:"args"`
	Status     JobStatus       `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	Worker     string          `json:"worker,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	StartedAt  time.Time       `json:"started_at"`
	EndedAt    time.Time       `json:"ended_at"`
}

// TaskRequest is the client payload of POST /jobs.
type TaskRequest struct {
	TaskName string         `json:"task_name" validate:"required"`
	Args     map[string]any `json:"args"`
}
