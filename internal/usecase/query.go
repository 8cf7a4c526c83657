package usecase

import (
	"context"
	"errors"
	"fmt"

	"jobmonitor/internal/domain"
	"jobmonitor/internal/ports"
)

// Monitor reads job state. It never writes to the queue.
type Monitor struct {
	Q ports.Queue
}

func (m Monitor) ListJobs(ctx context.Context) ([]domain.Job, error) {
	return m.Q.List(ctx)
}

func (m Monitor) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	j, err := m.Q.Fetch(ctx, id)
	if errors.Is(err, domain.ErrJobNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return j, err
}
