package in

import (
	"context"
	"time"

	"atheneum/internal/modules/library/dto"
	libraryin "atheneum/internal/modules/library/port/in"
)

type CLIHandler struct {
	usecase libraryin.Usecase
}

func NewCLIHandler(usecase libraryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AddBook(ctx context.Context, kind, title, author, path string, totalPages int) (dto.BookOutput, error) {
	return h.usecase.AddBook(ctx, dto.AddBookInput{
		Kind:       kind,
		Title:      title,
		Author:     author,
		FilePath:   path,
		TotalPages: totalPages,
	})
}

func (h CLIHandler) ListBooks(ctx context.Context) ([]dto.BookOutput, error) {
	return h.usecase.ListBooks(ctx)
}

func (h CLIHandler) GetBook(ctx context.Context, bookID string) (dto.BookDetailOutput, error) {
	return h.usecase.GetBook(ctx, bookID)
}

func (h CLIHandler) DeleteBook(ctx context.Context, bookID string) error {
	return h.usecase.DeleteBook(ctx, bookID)
}

func (h CLIHandler) SetGenre(ctx context.Context, bookID, genre string) (dto.BookOutput, error) {
	return h.usecase.SetGenre(ctx, bookID, genre)
}

func (h CLIHandler) CorrectPage(ctx context.Context, bookID string, page int) (dto.BookOutput, error) {
	return h.usecase.CorrectPage(ctx, bookID, page)
}

func (h CLIHandler) LogReading(ctx context.Context, bookID string, newPage int, duration time.Duration) (dto.SessionOutput, error) {
	return h.usecase.LogPhysicalSession(ctx, dto.LogPhysicalInput{BookID: bookID, NewPage: newPage, DurationMs: duration.Milliseconds()})
}

func (h CLIHandler) AddHighlight(ctx context.Context, bookID, text, color, note string) (dto.HighlightOutput, error) {
	return h.usecase.AddHighlight(ctx, dto.AddHighlightInput{BookID: bookID, Text: text, Color: color, Note: note})
}

func (h CLIHandler) ListHighlights(ctx context.Context, bookID string) ([]dto.HighlightOutput, error) {
	return h.usecase.ListHighlights(ctx, bookID)
}

func (h CLIHandler) DeleteHighlight(ctx context.Context, bookID, highlightID string) error {
	return h.usecase.DeleteHighlight(ctx, bookID, highlightID)
}

func (h CLIHandler) ListSummaries(ctx context.Context, bookID string) ([]dto.SummaryOutput, error) {
	return h.usecase.ListSummaries(ctx, bookID)
}

func (h CLIHandler) DeleteSummary(ctx context.Context, bookID, summaryID string) error {
	return h.usecase.DeleteSummary(ctx, bookID, summaryID)
}

func (h CLIHandler) ListPredictions(ctx context.Context, bookID string) ([]dto.PredictionOutput, error) {
	return h.usecase.ListPredictions(ctx, bookID)
}

func (h CLIHandler) ExportNotes(ctx context.Context, bookID string) (dto.ExportOutput, error) {
	return h.usecase.ExportNotes(ctx, bookID)
}

func (h CLIHandler) Stats(ctx context.Context) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}
