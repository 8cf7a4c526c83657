package ports

import (
	"context"
	"encoding/json"
	"time"

	"jobmonitor/internal/domain"
)

// Queue is the API process's view of the job store. Enqueue is the only
// write it performs; jobs may change status between reads.
type Queue interface {
	Enqueue(ctx context.Context, target string, args map[string]any) (*domain.Job, error)
	// Fetch returns domain.ErrJobNotFound for unknown or evicted ids.
	Fetch(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
}

// WorkQueue is the worker process's side of the same store.
type WorkQueue interface {
	Claim(ctx context.Context, consumer string, block time.Duration) (*domain.Job, string /*streamID*/, error)
	Start(ctx context.Context, id, consumer string) error
	Finish(ctx context.Context, id string, result json.RawMessage) error
	Fail(ctx context.Context, id string, reason string) error
	Ack(ctx context.Context, streamID string) error
}

type Reclaimer interface {
	// hands stale pending entries back to the stream
	Run(ctx context.Context) error
}
