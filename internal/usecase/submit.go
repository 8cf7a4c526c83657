package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"jobmonitor/internal/domain"
	"jobmonitor/internal/ports"

	"github.com/go-playground/validator/v10"
)

// TaskResolver maps a task name to a job target.
type TaskResolver interface {
	Resolve(taskName string) (string, bool)
}

// Submitter turns client task requests into queued jobs.
type Submitter struct {
	Resolver TaskResolver
	Q        ports.Queue

	validate *validator.Validate
}

func NewSubmitter(r TaskResolver, q ports.Queue) *Submitter {
	return &Submitter{Resolver: r, Q: q, validate: validator.New()}
}

// Submit parses body, resolves its task name and enqueues the target.
// Nothing is enqueued unless the name resolves.
func (s *Submitter) Submit(ctx context.Context, body []byte) (*domain.Job, error) {
	var req domain.TaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRequest, err)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrMissingTaskName
	}

	target, ok := s.Resolver.Resolve(req.TaskName)
	if !ok {
		return nil, fmt.Errorf("%w `%s`", domain.ErrUnresolvedTask, req.TaskName)
	}

	args := req.Args
	if args == nil {
		args = map[string]any{}
	}
	return s.Q.Enqueue(ctx, target, args)
}
