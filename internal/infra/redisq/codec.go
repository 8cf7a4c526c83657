package redisq

import (
	"encoding/json"
	"fmt"
	"time"

	"jobmonitor/internal/domain"
)

func hashToJob(h map[string]string) (*domain.Job, error) {
	j := &domain.Job{
		ID:     h["id"],
		Target: h["target"],
		Status: domain.JobStatus(h["status"]),
		Error:  h["error"],
		Worker: h["worker"],
		Args:   map[string]any{},
	}
	if !j.Status.Valid() {
		return nil, fmt.Errorf("redisq: job %s has unknown status %q", j.ID, h["status"])
	}
	if raw := h["args"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &j.Args); err != nil {
			return nil, fmt.Errorf("redisq: job %s args: %w", j.ID, err)
		}
	}
	if raw := h["result"]; raw != "" {
		j.Result = json.RawMessage(raw)
	}
	j.EnqueuedAt = parseTime(h["enqueued_at"])
	j.StartedAt = parseTime(h["started_at"])
	j.EndedAt = parseTime(h["ended_at"])
	return j, nil
}

// best-effort; zero time when absent
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
