package testhelpers

import (
	"sync"
	"time"

	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// DefaultTestTime is midday UTC so the civil date is the same in UTC and
// Asia/Kathmandu.
var DefaultTestTime = time.Date(2024, 2, 5, 6, 0, 0, 0, time.UTC)

// FixedClock is a settable time source for services and stores.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// SetDate moves the clock to 06:00 UTC on the given civil date.
func (c *FixedClock) SetDate(year int, month time.Month, day int) {
	c.Set(utils.Date(year, month, day).Add(6 * time.Hour))
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
