package booking

import "time"

// Clock supplies the current time. Check-in compares its calendar date with
// the booking's check-in date.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the hotel's time zone.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

// DateOf returns the calendar date of t, in t's own location, as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the current calendar date according to c.
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}
