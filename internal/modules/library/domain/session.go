package domain

import (
	"fmt"
	"time"

	apperrors "atheneum/internal/platform/errors"
)

// Session is one persisted stretch of reading.
type Session struct {
	OccurredAt  time.Time
	PagesRead   int
	DurationMs  int64
	MaxLocation int
}

func (s Session) Validate() error {
	if s.PagesRead < 0 {
		return fmt.Errorf("%w: pages read must not be negative", apperrors.ErrInvalidInput)
	}
	if s.DurationMs < 0 {
		return fmt.Errorf("%w: duration must not be negative", apperrors.ErrInvalidInput)
	}
	return nil
}
