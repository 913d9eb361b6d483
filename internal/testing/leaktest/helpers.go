// Package leaktest checks that background goroutines are torn down. The
// plugin spawns goroutines for fetches, the worker pool and the scheduler;
// a leak here outlives map changes and eventually kills the server.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

// GoroutineChecker helps detect goroutine leaks
type GoroutineChecker struct {
	before int
	t      testing.TB
}

// NewGoroutineChecker creates a new checker and records the current goroutine count
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()

	// Allow time for background goroutines to stabilize
	runtime.Gosched()
	time.Sleep(10 * time.Millisecond)

	return &GoroutineChecker{
		before: runtime.NumGoroutine(),
		t:      t,
	}
}

// Check verifies that goroutine count hasn't increased significantly
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()

	// Allow time for goroutines to finish
	runtime.Gosched()
	time.Sleep(50 * time.Millisecond)
	runtime.GC()
	time.Sleep(50 * time.Millisecond)

	after := runtime.NumGoroutine()
	leaked := after - g.before

	if leaked > tolerance {
		g.t.Errorf("Potential goroutine leak: before=%d, after=%d, leaked=%d (tolerance=%d)",
			g.before, after, leaked, tolerance)
	}
}

// CheckNoGoroutineLeak runs fn and verifies every goroutine it started is
// gone afterwards.
func CheckNoGoroutineLeak(t *testing.T, fn func()) {
	t.Helper()

	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}
