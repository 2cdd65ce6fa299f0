package usecase

import (
	"context"

	"atheneum/internal/modules/library/domain"
	"atheneum/internal/modules/library/dto"
	libraryin "atheneum/internal/modules/library/port/in"
	"atheneum/internal/modules/library/service"
)

type Interactor struct {
	svc *service.BookService
}

func NewInteractor(svc *service.BookService) libraryin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error) {
	book, err := i.svc.AddBook(ctx, domain.Kind(input.Kind), input.Title, input.Author, input.FilePath, input.TotalPages)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toBookOutput(book), nil
}

func (i *Interactor) ListBooks(ctx context.Context) ([]dto.BookOutput, error) {
	books, err := i.svc.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BookOutput, 0, len(books))
	for _, book := range books {
		out = append(out, toBookOutput(book))
	}
	return out, nil
}

func (i *Interactor) GetBook(ctx context.Context, bookID string) (dto.BookDetailOutput, error) {
	book, err := i.svc.GetBook(ctx, bookID)
	if err != nil {
		return dto.BookDetailOutput{}, err
	}
	sessions := make([]dto.SessionOutput, 0, len(book.Sessions))
	for _, s := range book.Sessions {
		sessions = append(sessions, toSessionOutput(s))
	}
	return dto.BookDetailOutput{
		BookOutput:   toBookOutput(book),
		FilePath:     book.FilePath,
		Cursor:       book.Cursor,
		Progress:     book.Progress,
		AddedAt:      book.AddedAt,
		IsNew:        book.IsNew(),
		SessionCount: len(book.Sessions),
		Sessions:     sessions,
	}, nil
}

func (i *Interactor) DeleteBook(ctx context.Context, bookID string) error {
	return i.svc.DeleteBook(ctx, bookID)
}

func (i *Interactor) UpdateCursor(ctx context.Context, input dto.UpdateCursorInput) error {
	return i.svc.UpdateCursor(ctx, input.BookID, input.Cursor, input.Progress, input.Page)
}

func (i *Interactor) ApproximateProgress(ctx context.Context, bookID string, step float64) (float64, error) {
	return i.svc.ApproximateProgress(ctx, bookID, step)
}

func (i *Interactor) AppendSession(ctx context.Context, input dto.AppendSessionInput) error {
	return i.svc.AppendSession(ctx, input.BookID, input.PagesRead, input.DurationMs, input.MaxLocation)
}

func (i *Interactor) LogPhysicalSession(ctx context.Context, input dto.LogPhysicalInput) (dto.SessionOutput, error) {
	session, err := i.svc.LogPhysicalSession(ctx, input.BookID, input.NewPage, input.DurationMs)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return toSessionOutput(session), nil
}

func (i *Interactor) CorrectPage(ctx context.Context, bookID string, page int) (dto.BookOutput, error) {
	book, err := i.svc.CorrectPage(ctx, bookID, page)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toBookOutput(book), nil
}

func (i *Interactor) SetGenre(ctx context.Context, bookID, genre string) (dto.BookOutput, error) {
	book, err := i.svc.SetGenre(ctx, bookID, domain.Genre(genre))
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toBookOutput(book), nil
}

func (i *Interactor) AddHighlight(ctx context.Context, input dto.AddHighlightInput) (dto.HighlightOutput, error) {
	h, err := i.svc.AddHighlight(ctx, input.BookID, input.Range, input.Text, domain.Color(input.Color), input.Note)
	if err != nil {
		return dto.HighlightOutput{}, err
	}
	return toHighlightOutput(h), nil
}

func (i *Interactor) DeleteHighlight(ctx context.Context, bookID, highlightID string) error {
	return i.svc.DeleteHighlight(ctx, bookID, highlightID)
}

func (i *Interactor) ListHighlights(ctx context.Context, bookID string) ([]dto.HighlightOutput, error) {
	book, err := i.svc.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	highlights := book.HighlightsNewestFirst()
	out := make([]dto.HighlightOutput, 0, len(highlights))
	for _, h := range highlights {
		out = append(out, toHighlightOutput(h))
	}
	return out, nil
}

func (i *Interactor) SaveSummary(ctx context.Context, input dto.SaveSummaryInput) (dto.SummaryOutput, error) {
	summary, err := i.svc.SaveSummary(ctx, input.BookID, input.ChapterName, input.Text)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	return toSummaryOutput(summary), nil
}

func (i *Interactor) DeleteSummary(ctx context.Context, bookID, summaryID string) error {
	return i.svc.DeleteSummary(ctx, bookID, summaryID)
}

func (i *Interactor) ListSummaries(ctx context.Context, bookID string) ([]dto.SummaryOutput, error) {
	book, err := i.svc.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	summaries := book.SummariesNewestFirst()
	out := make([]dto.SummaryOutput, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toSummaryOutput(s))
	}
	return out, nil
}

func (i *Interactor) AddPrediction(ctx context.Context, bookID, text string) (dto.PredictionOutput, error) {
	p, err := i.svc.AddPrediction(ctx, bookID, text)
	if err != nil {
		return dto.PredictionOutput{}, err
	}
	return toPredictionOutput(p), nil
}

func (i *Interactor) SetPredictionOutcome(ctx context.Context, input dto.SetOutcomeInput) (dto.PredictionOutput, error) {
	p, err := i.svc.SetPredictionOutcome(ctx, input.BookID, input.CreatedAt, domain.Outcome(input.Outcome))
	if err != nil {
		return dto.PredictionOutput{}, err
	}
	return toPredictionOutput(p), nil
}

func (i *Interactor) ListPredictions(ctx context.Context, bookID string) ([]dto.PredictionOutput, error) {
	book, err := i.svc.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PredictionOutput, 0, len(book.Predictions))
	for _, p := range book.Predictions {
		out = append(out, toPredictionOutput(p))
	}
	return out, nil
}

func (i *Interactor) Stats(ctx context.Context) (dto.StatsOutput, error) {
	stats, err := i.svc.Stats(ctx)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	return dto.StatsOutput{
		TotalBooks:      stats.TotalBooks,
		TotalPages:      stats.TotalPages,
		TotalDurationMs: stats.TotalDurationMs,
		PagesPerMinute:  stats.PagesPerMinute(),
	}, nil
}

func (i *Interactor) ExportNotes(ctx context.Context, bookID string) (dto.ExportOutput, error) {
	path, err := i.svc.ExportNotes(ctx, bookID)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{BookID: bookID, Path: path}, nil
}

func toBookOutput(book domain.Book) dto.BookOutput {
	return dto.BookOutput{
		ID:          book.ID,
		Kind:        string(book.Kind),
		Title:       book.Title,
		Author:      book.Author,
		Genre:       string(book.Genre),
		Percent:     book.ProgressPercent(),
		CurrentPage: book.CurrentPage,
		TotalPages:  book.TotalPages,
		LastReadAt:  book.LastReadAt,
	}
}

func toSessionOutput(s domain.Session) dto.SessionOutput {
	return dto.SessionOutput{OccurredAt: s.OccurredAt, PagesRead: s.PagesRead, DurationMs: s.DurationMs, MaxLocation: s.MaxLocation}
}

func toHighlightOutput(h domain.Highlight) dto.HighlightOutput {
	return dto.HighlightOutput{ID: h.ID, Range: h.Range, Text: h.Text, Color: string(h.Color), Note: h.Note, CreatedAt: h.CreatedAt}
}

func toSummaryOutput(s domain.Summary) dto.SummaryOutput {
	return dto.SummaryOutput{ID: s.ID, ChapterName: s.ChapterName, Text: s.Text, CreatedAt: s.CreatedAt}
}

func toPredictionOutput(p domain.Prediction) dto.PredictionOutput {
	return dto.PredictionOutput{Text: p.Text, Genre: string(p.Genre), Outcome: string(p.Outcome), CreatedAt: p.CreatedAt}
}
