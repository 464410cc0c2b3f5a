package services

import (
	"time"

	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// clock resolves "now" and the business-local civil date. Every service
// embeds one so tests can pin time.
type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(loc *time.Location) clock {
	if loc == nil {
		loc = time.UTC
	}
	return clock{now: time.Now, loc: loc}
}

// SetClock pins the time source.
func (c *clock) SetClock(now func() time.Time) { c.now = now }

func (c *clock) Now() time.Time { return c.now().UTC() }

// Today is the current civil date in the business timezone.
func (c *clock) Today() time.Time { return utils.DateOnly(c.now(), c.loc) }
