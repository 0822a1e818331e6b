// Package common — clock.go holds the business-time helpers.
// All day arithmetic (accrual cutoffs, withdrawal spacing) happens in the
// configured business timezone, never in server-local time.
package common

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Clock abstracts "now" so services can be tested with a fixed time.
type Clock interface {
	Now() time.Time
}

// SystemClock returns wall-clock time pinned to the business timezone.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock loads the named timezone. Falls back to UTC if the
// zone database does not know it.
func NewSystemClock(timezone string) *SystemClock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.WithError(err).Warnf("Could not load timezone %q, falling back to UTC", timezone)
		loc = time.UTC
	}
	return &SystemClock{loc: loc}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// DayStart returns midnight of t's calendar day, in t's location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysSince counts whole 24-hour periods elapsed from then to now.
// Negative if then is in the future.
func DaysSince(then, now time.Time) int {
	return int(now.Sub(then).Hours() / 24)
}

// NextWeekday returns the next occurrence of w strictly after t.
// If t already falls on w, the result is one week later.
func NextWeekday(t time.Time, w time.Weekday) time.Time {
	days := (int(w) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return DayStart(t).AddDate(0, 0, days)
}

// AdvanceToWeekday returns t if it falls on w, otherwise the next
// occurrence of w after t.
func AdvanceToWeekday(t time.Time, w time.Weekday) time.Time {
	if t.Weekday() == w {
		return t
	}
	return NextWeekday(t, w)
}
