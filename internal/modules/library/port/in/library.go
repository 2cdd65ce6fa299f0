package in

import (
	"context"

	"atheneum/internal/modules/library/dto"
)

type Usecase interface {
	AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error)
	ListBooks(ctx context.Context) ([]dto.BookOutput, error)
	GetBook(ctx context.Context, bookID string) (dto.BookDetailOutput, error)
	DeleteBook(ctx context.Context, bookID string) error

	UpdateCursor(ctx context.Context, input dto.UpdateCursorInput) error
	ApproximateProgress(ctx context.Context, bookID string, step float64) (float64, error)
	AppendSession(ctx context.Context, input dto.AppendSessionInput) error
	LogPhysicalSession(ctx context.Context, input dto.LogPhysicalInput) (dto.SessionOutput, error)
	CorrectPage(ctx context.Context, bookID string, page int) (dto.BookOutput, error)
	SetGenre(ctx context.Context, bookID, genre string) (dto.BookOutput, error)

	AddHighlight(ctx context.Context, input dto.AddHighlightInput) (dto.HighlightOutput, error)
	DeleteHighlight(ctx context.Context, bookID, highlightID string) error
	ListHighlights(ctx context.Context, bookID string) ([]dto.HighlightOutput, error)

	SaveSummary(ctx context.Context, input dto.SaveSummaryInput) (dto.SummaryOutput, error)
	DeleteSummary(ctx context.Context, bookID, summaryID string) error
	ListSummaries(ctx context.Context, bookID string) ([]dto.SummaryOutput, error)

	AddPrediction(ctx context.Context, bookID, text string) (dto.PredictionOutput, error)
	SetPredictionOutcome(ctx context.Context, input dto.SetOutcomeInput) (dto.PredictionOutput, error)
	ListPredictions(ctx context.Context, bookID string) ([]dto.PredictionOutput, error)

	Stats(ctx context.Context) (dto.StatsOutput, error)
	ExportNotes(ctx context.Context, bookID string) (dto.ExportOutput, error)
}
