package domain

import "time"

// Tracker accumulates active reading time and the set of visited
// locations for one open book. It is not safe for concurrent use.
type Tracker struct {
	bookID          string
	lastActive      time.Time
	lastInteraction time.Time
	totalMs         int64
	visited         map[int]struct{}
	maxLocation     int
	closed          bool
}

func NewTracker(bookID string, now time.Time) *Tracker {
	return &Tracker{
		bookID:      bookID,
		lastActive:  now,
		visited:     map[int]struct{}{},
		maxLocation: NoLocation,
	}
}

func (t *Tracker) BookID() string { return t.bookID }

// RecordActivity credits the time since the last activity. Gaps shorter
// than IdleThreshold count in full, longer ones count as IdleCredit.
func (t *Tracker) RecordActivity(now time.Time) {
	elapsed := now.Sub(t.lastActive)
	switch {
	case elapsed < 0:
	case elapsed < IdleThreshold:
		t.totalMs += elapsed.Milliseconds()
	default:
		t.totalMs += IdleCredit.Milliseconds()
	}
	if now.After(t.lastActive) {
		t.lastActive = now
	}
}

// RecordInteraction is RecordActivity for raw input, counted at most once
// per InteractionThrottle. It reports whether the interaction counted.
func (t *Tracker) RecordInteraction(now time.Time) bool {
	if !t.lastInteraction.IsZero() && now.Sub(t.lastInteraction) < InteractionThrottle {
		return false
	}
	t.lastInteraction = now
	t.RecordActivity(now)
	return true
}

// RecordLocationVisited is never throttled.
func (t *Tracker) RecordLocationVisited(location int, now time.Time) {
	t.RecordActivity(now)
	if location < 0 {
		return
	}
	t.visited[location] = struct{}{}
	if location > t.maxLocation {
		t.maxLocation = location
	}
}

func (t *Tracker) PagesRead() int { return len(t.visited) }

func (t *Tracker) DurationMs() int64 { return t.totalMs }

func (t *Tracker) MaxLocation() int { return t.maxLocation }

// Close credits the final stretch and returns the session. ok is false
// when the session is below the noise floor or was already closed.
func (t *Tracker) Close(now time.Time) (Closed, bool) {
	if t.closed {
		return Closed{}, false
	}
	t.RecordActivity(now)
	t.closed = true
	c := Closed{
		BookID:      t.bookID,
		PagesRead:   t.PagesRead(),
		DurationMs:  t.totalMs,
		MaxLocation: t.maxLocation,
	}
	return c, c.Worth()
}
