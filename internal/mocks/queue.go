// Package mocks provides in-memory test doubles for the queue ports.
package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"jobmonitor/internal/domain"
	"jobmonitor/internal/ports"

	"github.com/google/uuid"
)

var (
	_ ports.Queue     = (*Queue)(nil)
	_ ports.WorkQueue = (*Queue)(nil)
)

// Queue is an in-memory FIFO implementing both queue ports. Setting Err
// makes every call fail with it.
type Queue struct {
	mu      sync.Mutex
	jobs    map[string]*domain.Job
	order   []string
	pending []string
	acked   []string

	Err          error
	EnqueueCalls int
}

func NewQueue() *Queue {
	return &Queue{jobs: map[string]*domain.Job{}}
}

// Put stores j as if a worker had already processed it.
func (q *Queue) Put(j domain.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.jobs[j.ID]; !ok {
		q.order = append(q.order, j.ID)
	}
	q.jobs[j.ID] = &j
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

func (q *Queue) Acked() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.acked...)
}

func (q *Queue) Enqueue(_ context.Context, target string, args map[string]any) (*domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.EnqueueCalls++
	if q.Err != nil {
		return nil, q.Err
	}

	j := &domain.Job{
		ID:         uuid.NewString(),
		Target:     target,
		Args:       args,
		Status:     domain.StatusQueued,
		EnqueuedAt: time.Now().UTC(),
	}
	q.jobs[j.ID] = j
	q.order = append(q.order, j.ID)
	q.pending = append(q.pending, j.ID)
	cp := *j
	return &cp, nil
}

func (q *Queue) Fetch(_ context.Context, id string) (*domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return nil, q.Err
	}
	j, ok := q.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (q *Queue) List(_ context.Context) ([]domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return nil, q.Err
	}
	jobs := make([]domain.Job, 0, len(q.order))
	for _, id := range q.order {
		jobs = append(jobs, *q.jobs[id])
	}
	return jobs, nil
}

// Claim pops the next pending job; the stream id is the job id.
func (q *Queue) Claim(ctx context.Context, _ string, _ time.Duration) (*domain.Job, string, error) {
	q.mu.Lock()
	if q.Err != nil {
		q.mu.Unlock()
		return nil, "", q.Err
	}
	if len(q.pending) == 0 {
		q.mu.Unlock()
		select {
		case <-ctx.Done():
		case <-time.After(time.Millisecond):
		}
		return nil, "", nil
	}
	id := q.pending[0]
	q.pending = q.pending[1:]
	q.mu.Unlock()

	j, err := q.Fetch(ctx, id)
	return j, id, err
}

func (q *Queue) Start(_ context.Context, id, consumer string) error {
	return q.set(id, domain.StatusStarted, func(j *domain.Job) {
		j.Worker = consumer
		j.StartedAt = time.Now().UTC()
	})
}

func (q *Queue) Finish(_ context.Context, id string, result json.RawMessage) error {
	return q.set(id, domain.StatusFinished, func(j *domain.Job) {
		j.Result = result
		j.EndedAt = time.Now().UTC()
	})
}

func (q *Queue) Fail(_ context.Context, id string, reason string) error {
	return q.set(id, domain.StatusFailed, func(j *domain.Job) {
		j.Error = reason
		j.EndedAt = time.Now().UTC()
	})
}

func (q *Queue) Ack(_ context.Context, streamID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, streamID)
	return nil
}

func (q *Queue) set(id string, next domain.JobStatus, apply func(*domain.Job)) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	if !j.Status.CanTransition(next) {
		return fmt.Errorf("job %s to %s: %w", id, next, domain.ErrInvalidTransition)
	}
	j.Status = next
	apply(j)
	return nil
}
