package out

import (
	"context"

	readerout "atheneum/internal/modules/reader/port/out"
	"atheneum/internal/modules/session/dto"
	sessionin "atheneum/internal/modules/session/port/in"
)

type SessionActivityAdapter struct {
	sessions sessionin.Usecase
}

func NewSessionActivityAdapter(sessions sessionin.Usecase) readerout.ActivityPort {
	return &SessionActivityAdapter{sessions: sessions}
}

func (a *SessionActivityAdapter) RecordLocation(ctx context.Context, bookID string, index int) error {
	return a.sessions.RecordLocation(ctx, dto.LocationInput{BookID: bookID, Index: index})
}

func (a *SessionActivityAdapter) RecordInteraction(ctx context.Context) error {
	return a.sessions.RecordInteraction(ctx)
}
