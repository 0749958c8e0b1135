package clock

import "time"

// Clock is the time source used by the scheduler loop, the command router,
// and the repeat queue. Injecting it keeps date and time-of-day decisions
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	location *time.Location
}

// New returns a clock reporting wall-clock time in the given location.
func New(location *time.Location) Clock {
	if location == nil {
		location = time.UTC
	}
	return &systemClock{location: location}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.location)
}
