package domain

import "time"

const (
	// IdleThreshold is the gap after which the reader is assumed to have
	// wandered off.
	IdleThreshold = 3 * time.Minute
	// IdleCredit is what an idle gap contributes instead of its length.
	IdleCredit = time.Minute
	// InteractionThrottle bounds how often raw input counts as activity.
	InteractionThrottle = 10 * time.Second
	// NoiseFloor is the duration at or below which a session with no pages
	// is not worth keeping.
	NoiseFloor = 5 * time.Second

	NoLocation = -1
)

// ActiveSession marks the book currently open in this process.
type ActiveSession struct {
	SessionID string    `json:"session_id"`
	BookID    string    `json:"book_id"`
	BookTitle string    `json:"book_title"`
	StartedAt time.Time `json:"started_at"`
}

// Closed is the outcome of a finished tracker.
type Closed struct {
	BookID      string
	PagesRead   int
	DurationMs  int64
	MaxLocation int
}

// Worth reports whether the session clears the noise floor.
func (c Closed) Worth() bool {
	return c.DurationMs > NoiseFloor.Milliseconds() || c.PagesRead > 0
}
