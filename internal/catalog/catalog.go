// Package catalog holds the tasks a worker can execute, keyed by the job
// target the API resolved them to.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"jobmonitor/internal/domain"
)

// Task is the body of a job. Its result must be JSON-encodable.
type Task func(ctx context.Context, args map[string]any) (any, error)

type Catalog struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

func New() *Catalog {
	return &Catalog{tasks: map[string]Task{}}
}

// Register adds task under target. A target can only be registered once.
func (c *Catalog) Register(target string, task Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tasks[target]; ok {
		return fmt.Errorf("task %s already registered", target)
	}
	c.tasks[target] = task
	return nil
}

func (c *Catalog) Targets() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tasks))
	for n := range c.tasks {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Run executes the task registered for target. A panicking task is
// reported as an error.
func (c *Catalog) Run(ctx context.Context, target string, args map[string]any) (result any, err error) {
	c.mu.RLock()
	task, ok := c.tasks[target]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTask, target)
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("task %s panicked: %v", target, r)
		}
	}()
	return task(ctx, args)
}
