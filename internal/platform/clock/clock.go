package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports local wall time. Streaks are counted in local
// calendar days, so it must not normalise to UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
