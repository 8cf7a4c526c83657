package redisq

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"jobmonitor/internal/domain"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] job hash
// ARGV[1] next status, ARGV[2] ttl ms, ARGV[3] n allowed current statuses,
// ARGV[4..3+n] allowed statuses, the rest field/value pairs.
var transitionScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'status')
if not cur then
	return -1
end
local n = tonumber(ARGV[3])
local allowed = false
for i = 4, 3 + n do
	if ARGV[i] == cur then
		allowed = true
	end
end
if not allowed then
	return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[1])
for i = 4 + n, #ARGV, 2 do
	redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
end
local ttl = tonumber(ARGV[2])
if ttl > 0 then
	redis.call('PEXPIRE', KEYS[1], ttl)
end
return 1
`)

var allStatuses = []domain.JobStatus{
	domain.StatusQueued,
	domain.StatusStarted,
	domain.StatusFinished,
	domain.StatusFailed,
}

// transition moves job id to next if its current status allows it, setting
// fields alongside. Terminal jobs expire after ttl when ttl > 0.
func (c *Client) transition(ctx context.Context, id string, next domain.JobStatus, ttl time.Duration, fields ...string) error {
	var from []any
	for _, s := range allStatuses {
		if s.CanTransition(next) {
			from = append(from, string(s))
		}
	}

	args := make([]any, 0, 3+len(from)+len(fields))
	args = append(args, string(next), strconv.FormatInt(ttl.Milliseconds(), 10), strconv.Itoa(len(from)))
	args = append(args, from...)
	for _, f := range fields {
		args = append(args, f)
	}

	res, err := transitionScript.Run(ctx, c.Rdb, []string{c.jobKey(id)}, args...).Int()
	if err != nil {
		return storeErr("transition", err)
	}
	switch res {
	case -1:
		return domain.ErrJobNotFound
	case 0:
		return fmt.Errorf("job %s to %s: %w", id, next, domain.ErrInvalidTransition)
	}
	return nil
}
