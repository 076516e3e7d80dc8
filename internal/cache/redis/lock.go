package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/spreadbot/internal/domain"
)

// leadLua renews the lease when ARGV[1] already owns it and otherwise takes
// it only if it is free. Returns 1 when ARGV[1] holds the lease afterwards.
const leadLua = `
local holder = redis.call('GET', KEYS[1])
if holder == ARGV[1] then
    redis.call('PEXPIRE', KEYS[1], ARGV[2])
    return 1
end
if not holder then
    redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
    return 1
end
return 0
`

// unlockLua deletes the lock key only while it still holds the caller's
// token, so an expired holder cannot release its successor's lease.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// LockManager implements domain.LockManager with owner-tokened keys and
// Lua scripts for atomic renew and release.
type LockManager struct {
	rdb      *redis.Client
	leadSc   *redis.Script
	unlockSc *redis.Script
}

// NewLockManager creates a LockManager backed by the given Client.
func NewLockManager(c *Client) *LockManager {
	return &LockManager{
		rdb:      c.Underlying(),
		leadSc:   redis.NewScript(leadLua),
		unlockSc: redis.NewScript(unlockLua),
	}
}

func lockKey(key string) string {
	return "lock:" + key
}

// Lead takes or renews the lease on key for owner, valid for ttl.
func (lm *LockManager) Lead(ctx context.Context, key, owner string, ttl time.Duration) error {
	if ttl < time.Millisecond {
		return fmt.Errorf("redis: lead %s: ttl %s too short", key, ttl)
	}

	held, err := lm.leadSc.Run(ctx, lm.rdb, []string{lockKey(key)}, owner, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis: lead %s: %w", key, err)
	}
	if held != 1 {
		return fmt.Errorf("redis: lead %s: %w", key, domain.ErrLockHeld)
	}
	return nil
}

// Resign releases the lease on key if owner still holds it. Releasing a
// lease owned by someone else, or an expired one, is a no-op.
func (lm *LockManager) Resign(ctx context.Context, key, owner string) error {
	if err := lm.unlockSc.Run(ctx, lm.rdb, []string{lockKey(key)}, owner).Err(); err != nil {
		return fmt.Errorf("redis: resign %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.LockManager = (*LockManager)(nil)
