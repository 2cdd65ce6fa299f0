package out

import (
	"context"

	"atheneum/internal/modules/session/domain"
)

// SessionSink persists closed sessions against their book.
type SessionSink interface {
	AppendSession(ctx context.Context, session domain.Closed) error
}

type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.ActiveSession) error
	LoadActive(ctx context.Context) (domain.ActiveSession, error)
	ClearActive(ctx context.Context) error
}
