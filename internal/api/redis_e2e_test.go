package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobmonitor/internal/api"
	"jobmonitor/internal/catalog"
	"jobmonitor/internal/config"
	"jobmonitor/internal/infra/redisq"
	"jobmonitor/internal/resolver"
	"jobmonitor/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobEnvelope struct {
	Job api.JobView `json:"job"`
}

func TestSubmitRunAndPollOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	q := redisq.NewWithClient(config.Redis{KeyPrefix: "e2e", JobTTL: time.Minute}, rdb)
	require.NoError(t, q.Init(ctx))

	reg, err := resolver.NewRegistry(resolver.Prefix("tasks."))
	require.NoError(t, err)
	srv := httptest.NewServer(api.NewServer(q, reg, api.Options{Pinger: q}).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/jobs", "application/json", strings.NewReader(`{"task_name":"add","args":{"a":3,"b":4}}`))
	require.NoError(t, err)
	var created jobEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "queued", created.Job.Status)

	jobs, err := q.List(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	// one worker iteration
	consumer := usecase.Consumer{Q: q, Tasks: catalog.Builtin("tasks."), ConsumerName: "w1"}
	j, streamID, err := q.Claim(ctx, "w1", 50*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, j)
	consumer.Process(ctx, *j, streamID)

	resp, err = http.Get(created.Job.URI)
	require.NoError(t, err)
	var polled jobEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&polled))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.Job.ID, polled.Job.ID)
	assert.Equal(t, "finished", polled.Job.Status)
	assert.JSONEq(t, "7", string(polled.Job.Result))

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnresolvedNeverReachesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	q := redisq.NewWithClient(config.Redis{KeyPrefix: "e2e"}, rdb)
	reg, err := resolver.NewRegistry(resolver.Allow("tasks.", "add"))
	require.NoError(t, err)
	srv := httptest.NewServer(api.NewServer(q, reg, api.Options{}).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/jobs", "application/json", strings.NewReader(`{"task_name":"sleep"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, mr.Exists("e2e:stream"))
	assert.False(t, mr.Exists("e2e:jobs"))
}
