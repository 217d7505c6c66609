// Package guard suppresses re-entrant synchronization raised by the side
// effects of a synchronization pass.
package guard

import (
	"context"
	"sync/atomic"
)

type tokenKey struct{}

// Guard is owned by a single synchronizer instance.
type Guard struct {
	depth atomic.Int32
}

// New returns an inactive guard.
func New() *Guard {
	return &Guard{}
}

// Enter marks the guard active and tags ctx with its token. The returned
// release function must be called exactly once.
func (g *Guard) Enter(ctx context.Context) (context.Context, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	g.depth.Add(1)
	var released atomic.Bool
	release := func() {
		if released.CompareAndSwap(false, true) {
			g.depth.Add(-1)
		}
	}
	return context.WithValue(ctx, tokenKey{}, g), release
}

// IsActive reports whether a pass is in flight.
func (g *Guard) IsActive() bool {
	return g.depth.Load() > 0
}

// Owns reports whether ctx was produced by this guard's Enter.
func (g *Guard) Owns(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	owner, ok := ctx.Value(tokenKey{}).(*Guard)
	return ok && owner == g
}

// Active reports whether ctx carries any guard token.
func Active(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	_, ok := ctx.Value(tokenKey{}).(*Guard)
	return ok
}
