package out

import (
	"context"

	"atheneum/internal/modules/library/dto"
	libraryin "atheneum/internal/modules/library/port/in"
	"atheneum/internal/modules/reader/domain"
	readerout "atheneum/internal/modules/reader/port/out"
)

// LibraryBookAdapter resolves books and stores highlights through the
// library module.
type LibraryBookAdapter struct {
	library libraryin.Usecase
}

func NewLibraryBookAdapter(library libraryin.Usecase) *LibraryBookAdapter {
	return &LibraryBookAdapter{library: library}
}

var (
	_ readerout.BookResolver  = (*LibraryBookAdapter)(nil)
	_ readerout.HighlightPort = (*LibraryBookAdapter)(nil)
)

func (a *LibraryBookAdapter) Resolve(ctx context.Context, bookID string) (domain.BookRef, error) {
	book, err := a.library.GetBook(ctx, bookID)
	if err != nil {
		return domain.BookRef{}, err
	}
	highlights, err := a.library.ListHighlights(ctx, bookID)
	if err != nil {
		return domain.BookRef{}, err
	}
	ref := domain.BookRef{
		ID:       book.ID,
		Kind:     book.Kind,
		Title:    book.Title,
		Author:   book.Author,
		FilePath: book.FilePath,
		Cursor:   book.Cursor,
		Progress: book.Progress,
	}
	for _, h := range highlights {
		if h.Range == "" {
			continue
		}
		ref.Annotations = append(ref.Annotations, domain.Annotation{Range: h.Range, Color: h.Color})
	}
	return ref, nil
}

func (a *LibraryBookAdapter) AddHighlight(ctx context.Context, bookID, r, text, color string) (string, error) {
	out, err := a.library.AddHighlight(ctx, dto.AddHighlightInput{
		BookID: bookID,
		Range:  r,
		Text:   text,
		Color:  color,
	})
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

func (a *LibraryBookAdapter) DeleteHighlight(ctx context.Context, bookID, highlightID string) error {
	return a.library.DeleteHighlight(ctx, bookID, highlightID)
}
