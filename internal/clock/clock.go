// Package clock abstracts the wall clock so handlers can be tested at a fixed time.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	NowUnixMilli() int64
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time      { return time.Now() }
func (RealClock) NowUnixMilli() int64 { return time.Now().UnixMilli() }

// MockClock returns a time set by the test.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *MockClock) NowUnixMilli() int64 {
	return c.Now().UnixMilli()
}

func (c *MockClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
