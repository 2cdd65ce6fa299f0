package out

import (
	"context"

	companionout "atheneum/internal/modules/companion/port/out"
	"atheneum/internal/modules/session/dto"
	sessionin "atheneum/internal/modules/session/port/in"
)

type SessionAdapter struct {
	sessions sessionin.Usecase
}

func NewSessionAdapter(sessions sessionin.Usecase) companionout.SessionPort {
	return &SessionAdapter{sessions: sessions}
}

func (a *SessionAdapter) Begin(ctx context.Context, bookID, title string) error {
	_, err := a.sessions.Begin(ctx, dto.BeginInput{BookID: bookID, BookTitle: title})
	return err
}

func (a *SessionAdapter) End(ctx context.Context) error {
	_, err := a.sessions.End(ctx)
	return err
}
