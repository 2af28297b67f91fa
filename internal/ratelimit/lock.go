package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// releaseIfOwner deletes the key only while it still carries our token.
var releaseIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var (
	ErrEmptyLeaseKey   = errors.New("empty_lease_key")
	ErrInvalidLeaseTTL = errors.New("invalid_lease_ttl")
)

// Locker hands out single-holder redis leases for startup jobs such as demo
// seeding, so only one replica runs them.
type Locker struct {
	client redis.Cmdable
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

// Lease is a held lock. A zero-token lease came from a nil Locker and
// releases as a no-op.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// Acquire returns a lease for key, or nil when another holder has it. A nil
// Locker grants every lease since a single replica needs no coordination.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if l == nil || l.client == nil {
		return &Lease{key: key}, nil
	}
	if key == "" {
		return nil, ErrEmptyLeaseKey
	}
	if ttl <= 0 {
		return nil, ErrInvalidLeaseTTL
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &Lease{locker: l, key: key, token: token}, nil
}

func (le *Lease) Release(ctx context.Context) error {
	if le == nil || le.locker == nil || le.token == "" {
		return nil
	}
	return releaseIfOwner.Run(ctx, le.locker.client, []string{le.key}, le.token).Err()
}
