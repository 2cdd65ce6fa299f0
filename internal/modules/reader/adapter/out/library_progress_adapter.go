package out

import (
	"context"

	"atheneum/internal/modules/library/dto"
	libraryin "atheneum/internal/modules/library/port/in"
	readerout "atheneum/internal/modules/reader/port/out"
)

type LibraryProgressAdapter struct {
	library libraryin.Usecase
}

func NewLibraryProgressAdapter(library libraryin.Usecase) readerout.ProgressPort {
	return &LibraryProgressAdapter{library: library}
}

func (a *LibraryProgressAdapter) UpdateCursor(ctx context.Context, bookID, cursor string, progress float64, page int) error {
	return a.library.UpdateCursor(ctx, dto.UpdateCursorInput{
		BookID:   bookID,
		Cursor:   cursor,
		Progress: progress,
		Page:     page,
	})
}

func (a *LibraryProgressAdapter) Approximate(ctx context.Context, bookID string, step float64) (float64, error) {
	return a.library.ApproximateProgress(ctx, bookID, step)
}
