package workflow

import (
	"time"

	"github.com/pjecz/plataforma-web/storage/model"
)

// Clock tells the current time in the zone where the courts work. The zero
// Clock uses time.Now and the local zone.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock returns a Clock reading the system time in loc.
func NewClock(loc *time.Location) Clock {
	return Clock{
		now: time.Now,
		loc: loc,
	}
}

// FixedClock always returns t.
func FixedClock(t time.Time, loc *time.Location) Clock {
	return Clock{
		now: func() time.Time { return t },
		loc: loc,
	}
}

// Now returns the current instant
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// Location returns the working zone
func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// Today returns the current calendar day in the working zone, in the stored
// date form.
func (c Clock) Today() time.Time {
	return model.Date(c.Now(), c.Location())
}

// Midnight returns the instant the current day started in the working zone
func (c Clock) Midnight() time.Time {
	y, m, d := c.Now().In(c.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}
