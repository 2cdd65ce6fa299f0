package out

import (
	"context"
	"time"

	"atheneum/internal/modules/companion/domain"
	companionout "atheneum/internal/modules/companion/port/out"
	"atheneum/internal/modules/library/dto"
	libraryin "atheneum/internal/modules/library/port/in"
)

// LibraryBookAdapter serves both book facts and prediction storage from the
// library.
type LibraryBookAdapter struct {
	library libraryin.Usecase
}

var (
	_ companionout.BookPort        = (*LibraryBookAdapter)(nil)
	_ companionout.PredictionStore = (*LibraryBookAdapter)(nil)
)

func NewLibraryBookAdapter(library libraryin.Usecase) *LibraryBookAdapter {
	return &LibraryBookAdapter{library: library}
}

func (a *LibraryBookAdapter) Facts(ctx context.Context, bookID string) (domain.BookFacts, error) {
	book, err := a.library.GetBook(ctx, bookID)
	if err != nil {
		return domain.BookFacts{}, err
	}
	return domain.BookFacts{
		ID:           book.ID,
		Title:        book.Title,
		Author:       book.Author,
		Genre:        book.Genre,
		Cursor:       book.Cursor,
		SessionCount: book.SessionCount,
		LastReadAt:   book.LastReadAt,
	}, nil
}

func (a *LibraryBookAdapter) SetGenre(ctx context.Context, bookID, genre string) error {
	_, err := a.library.SetGenre(ctx, bookID, genre)
	return err
}

func (a *LibraryBookAdapter) AddPrediction(ctx context.Context, bookID, text string) (time.Time, error) {
	p, err := a.library.AddPrediction(ctx, bookID, text)
	if err != nil {
		return time.Time{}, err
	}
	return p.CreatedAt, nil
}

func (a *LibraryBookAdapter) SetOutcome(ctx context.Context, bookID string, createdAt time.Time, outcome string) error {
	_, err := a.library.SetPredictionOutcome(ctx, dto.SetOutcomeInput{BookID: bookID, CreatedAt: createdAt, Outcome: outcome})
	return err
}
