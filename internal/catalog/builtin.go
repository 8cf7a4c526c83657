package catalog

import (
	"context"
	"fmt"
	"time"
)

// Builtin returns a catalog with the stock tasks registered under prefix.
func Builtin(prefix string) *Catalog {
	c := New()
	_ = c.Register(prefix+"add", Add)
	_ = c.Register(prefix+"echo", Echo)
	_ = c.Register(prefix+"sleep", Sleep)
	return c
}

// Add returns args["a"] + args["b"].
func Add(_ context.Context, args map[string]any) (any, error) {
	a, err := number(args, "a")
	if err != nil {
		return nil, err
	}
	b, err := number(args, "b")
	if err != nil {
		return nil, err
	}
	return a + b, nil
}

func Echo(_ context.Context, args map[string]any) (any, error) {
	return args, nil
}

// Sleep waits args["seconds"] and returns the duration slept in seconds.
func Sleep(ctx context.Context, args map[string]any) (any, error) {
	s, err := number(args, "seconds")
	if err != nil {
		return nil, err
	}
	d := time.Duration(s * float64(time.Second))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(d):
	}
	return s, nil
}

func number(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument %q must be a number, got %T", key, v)
	}
}
