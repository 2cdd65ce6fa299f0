package out

import (
	"context"

	librarydto "atheneum/internal/modules/library/dto"
	libraryin "atheneum/internal/modules/library/port/in"
	"atheneum/internal/modules/session/domain"
	sessionout "atheneum/internal/modules/session/port/out"
)

type LibrarySessionSink struct {
	library libraryin.Usecase
}

func NewLibrarySessionSink(library libraryin.Usecase) sessionout.SessionSink {
	return &LibrarySessionSink{library: library}
}

func (s *LibrarySessionSink) AppendSession(ctx context.Context, session domain.Closed) error {
	return s.library.AppendSession(ctx, librarydto.AppendSessionInput{
		BookID:      session.BookID,
		PagesRead:   session.PagesRead,
		DurationMs:  session.DurationMs,
		MaxLocation: session.MaxLocation,
	})
}
