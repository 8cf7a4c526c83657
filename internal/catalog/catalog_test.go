package catalog

import (
	"context"
	"testing"

	"jobmonitor/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTargets(t *testing.T) {
	c := Builtin("tasks.")
	assert.Equal(t, []string{"tasks.add", "tasks.echo", "tasks.sleep"}, c.Targets())
}

func TestRunAdd(t *testing.T) {
	c := Builtin("tasks.")

	res, err := c.Run(context.Background(), "tasks.add", map[string]any{"a": 3.0, "b": 4})
	require.NoError(t, err)
	assert.Equal(t, 7.0, res)

	_, err = c.Run(context.Background(), "tasks.add", map[string]any{"a": "x", "b": 1})
	assert.ErrorContains(t, err, `argument "a" must be a number`)

	_, err = c.Run(context.Background(), "tasks.add", map[string]any{"a": 1})
	assert.ErrorContains(t, err, `missing argument "b"`)
}

func TestRunUnknown(t *testing.T) {
	_, err := New().Run(context.Background(), "tasks.nope", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownTask)
}

func TestRunRecoversPanic(t *testing.T) {
	c := New()
	require.NoError(t, c.Register("boom", func(context.Context, map[string]any) (any, error) {
		panic("kaboom")
	}))

	res, err := c.Run(context.Background(), "boom", nil)
	assert.Nil(t, res)
	assert.ErrorContains(t, err, "kaboom")
}

func TestRegisterTwice(t *testing.T) {
	c := New()
	require.NoError(t, c.Register("x", Echo))
	assert.Error(t, c.Register("x", Echo))
}

func TestSleepHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sleep(ctx, map[string]any{"seconds": 10.0})
	assert.ErrorIs(t, err, context.Canceled)

	res, err := Sleep(context.Background(), map[string]any{"seconds": 0.001})
	require.NoError(t, err)
	assert.Equal(t, 0.001, res)
}
