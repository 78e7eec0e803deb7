package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/pairbot/internal/domain"
)

// unlockLua deletes a lock key only if its value matches the caller's unique
// token, so one holder cannot release another holder's lock.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// refreshLua extends a lock key's TTL only while the caller still holds it.
// Returns 0 when the key is gone or owned by someone else.
const refreshLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`

// LockManager implements domain.LockManager using Redis SETNX with a TTL and
// Lua-based conditional refresh and unlock.
type LockManager struct {
	rdb       *redis.Client
	unlockSc  *redis.Script
	refreshSc *redis.Script
}

// NewLockManager creates a LockManager backed by the given Client.
func NewLockManager(c *Client) *LockManager {
	return &LockManager{
		rdb:       c.Underlying(),
		unlockSc:  redis.NewScript(unlockLua),
		refreshSc: redis.NewScript(refreshLua),
	}
}

func lockKey(key string) string {
	return "lock:" + key
}

// runLock is a held lock lease. Release is safe to call multiple times.
type runLock struct {
	lm       *LockManager
	key      string
	token    string
	released bool
}

// Refresh extends the lease by ttl. It returns domain.ErrLockHeld when the
// lease has lapsed and another party now holds (or could take) the lock; the
// holder must then stop its protected work.
func (l *runLock) Refresh(ctx context.Context, ttl time.Duration) error {
	if l.released {
		return domain.ErrLockHeld
	}

	res, err := l.lm.refreshSc.Run(ctx, l.lm.rdb, []string{l.key}, l.token, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis: refresh lock %s: %w", l.key, err)
	}
	if res == 0 {
		return domain.ErrLockHeld
	}
	return nil
}

// Release drops the lease. It uses a background context so release succeeds
// even when the caller's context is already cancelled.
func (l *runLock) Release() {
	if l.released {
		return
	}
	l.released = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = l.lm.unlockSc.Run(ctx, l.lm.rdb, []string{l.key}, l.token).Err()
}

// Acquire attempts to obtain a distributed lock for the given key with the
// specified TTL. It returns domain.ErrLockHeld if the lock is already held by
// another party.
func (lm *LockManager) Acquire(ctx context.Context, key string, ttl time.Duration) (domain.RunLock, error) {
	token := uuid.New().String()
	lk := lockKey(key)

	ok, err := lm.rdb.SetNX(ctx, lk, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}

	return &runLock{lm: lm, key: lk, token: token}, nil
}

// Compile-time interface check.
var _ domain.LockManager = (*LockManager)(nil)
