package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/sathi/internal/config"
)

const keyDispatchResource = "sathi:dispatch:resource:%s"

// DispatchLimiter throttles dispatch attempts per resource so a burst of
// callers racing for one scarce resource is shed before it reaches the
// row lock.
type DispatchLimiter struct {
	bucket Allower
	rate   float64
	burst  int
}

func NewDispatchLimiter(cfg config.Config, bucket *TokenBucket) *DispatchLimiter {
	if bucket == nil {
		return nil
	}
	return NewDispatchLimiterWithBucket(bucket, cfg.RateLimit.DispatchRatePerSecond, cfg.RateLimit.DispatchBurst)
}

// NewDispatchLimiterWithBucket builds a limiter over any token source.
func NewDispatchLimiterWithBucket(bucket Allower, rate float64, burst int) *DispatchLimiter {
	return &DispatchLimiter{bucket: bucket, rate: rate, burst: burst}
}

func (l *DispatchLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow takes a token for resourceID. A disabled limiter allows everything.
func (l *DispatchLimiter) Allow(ctx context.Context, resourceID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" {
		return nil, ErrEmptyKey
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyDispatchResource, resourceID), l.rate, l.burst)
}
