package out

import (
	"context"

	assistout "atheneum/internal/modules/assist/port/out"
	"atheneum/internal/modules/library/dto"
	libraryin "atheneum/internal/modules/library/port/in"
)

const explanationColor = "purple"

// LibraryNotesAdapter stores generated text on the book it belongs to.
type LibraryNotesAdapter struct {
	library libraryin.Usecase
}

func NewLibraryNotesAdapter(library libraryin.Usecase) *LibraryNotesAdapter {
	return &LibraryNotesAdapter{library: library}
}

var (
	_ assistout.SummaryStore     = (*LibraryNotesAdapter)(nil)
	_ assistout.ExplanationStore = (*LibraryNotesAdapter)(nil)
)

func (a *LibraryNotesAdapter) SaveSummary(ctx context.Context, bookID, chapterName, text string) error {
	_, err := a.library.SaveSummary(ctx, dto.SaveSummaryInput{BookID: bookID, ChapterName: chapterName, Text: text})
	return err
}

func (a *LibraryNotesAdapter) SaveExplanation(ctx context.Context, bookID, text, explanation string) (string, error) {
	out, err := a.library.AddHighlight(ctx, dto.AddHighlightInput{
		BookID: bookID,
		Text:   text,
		Color:  explanationColor,
		Note:   explanation,
	})
	if err != nil {
		return "", err
	}
	return out.ID, nil
}
