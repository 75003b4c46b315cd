// Package ratelimit enforces a fixed-window call budget per caller.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/Nina932/nyx/internal/auth"
)

// Store counts hits per key within fixed windows.
type Store interface {
	// Incr records one hit for key and returns the hit count of the current
	// window and the time that window ends. A new window starts on the first
	// hit after the previous one ended.
	Incr(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter allows at most max calls per key per window. Admins are exempt.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
}

func New(store Store, max int, window time.Duration) *Limiter {
	return &Limiter{store: store, max: max, window: window}
}

// Allow counts a call for key unless role is exempt.
func (l *Limiter) Allow(ctx context.Context, key string, role auth.Role) (Decision, error) {
	if role == auth.RoleAdmin {
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max}, nil
	}

	count, resetAt, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return Decision{}, fmt.Errorf("rate window incr: %w", err)
	}

	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Key picks the counter key for a caller: the subject when authenticated,
// otherwise the client address.
func Key(subject, clientIP string) string {
	if subject != "" {
		return "user:" + subject
	}
	return "ip:" + clientIP
}
