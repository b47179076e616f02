// Package ratelimit throttles login attempts with fixed windows.
package ratelimit

import (
	"context"
	"time"
)

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type Limiter interface {
	// Allow counts one attempt against key. A limit <= 0 always allows.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}
