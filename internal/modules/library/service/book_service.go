package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"atheneum/internal/modules/library/domain"
	libraryout "atheneum/internal/modules/library/port/out"
	"atheneum/internal/platform/clock"
	apperrors "atheneum/internal/platform/errors"
	"atheneum/internal/platform/id"
	"atheneum/internal/platform/writequeue"
)

type BookService struct {
	clock    clock.Clock
	idGen    id.Generator
	store    libraryout.BookStore
	exporter libraryout.NotesExporter
	days     libraryout.ReadingDayRecorder
	queue    *writequeue.Queue
	logger   *slog.Logger
}

func NewBookService(
	clock clock.Clock,
	idGen id.Generator,
	store libraryout.BookStore,
	exporter libraryout.NotesExporter,
	days libraryout.ReadingDayRecorder,
	queue *writequeue.Queue,
	logger *slog.Logger,
) *BookService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BookService{clock: clock, idGen: idGen, store: store, exporter: exporter, days: days, queue: queue, logger: logger}
}

func (s *BookService) AddBook(ctx context.Context, kind domain.Kind, title, author, filePath string, totalPages int) (domain.Book, error) {
	if kind == "" {
		guessed, ok := domain.KindForPath(filePath)
		if !ok {
			return domain.Book{}, fmt.Errorf("%w: cannot tell the kind of %q, pass it explicitly", apperrors.ErrInvalidInput, filePath)
		}
		kind = guessed
	}
	if err := kind.Validate(); err != nil {
		return domain.Book{}, err
	}
	filePath = strings.TrimSpace(filePath)
	title = strings.TrimSpace(title)
	if title == "" && filePath != "" {
		title = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	if kind == domain.KindPhysical {
		filePath = ""
		if totalPages <= 0 {
			totalPages = domain.DefaultPhysicalPages
		}
	} else {
		totalPages = 0
	}
	book := domain.Book{
		ID:         s.idGen.New(),
		Kind:       kind,
		Title:      title,
		Author:     strings.TrimSpace(author),
		FilePath:   filePath,
		TotalPages: totalPages,
		AddedAt:    s.clock.Now(),
	}
	if err := book.Validate(); err != nil {
		return domain.Book{}, err
	}
	err := s.queue.Do(ctx, book.ID, "add book", func(context.Context) error {
		return s.store.Put(ctx, book)
	})
	if err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.store.List(ctx)
}

func (s *BookService) GetBook(ctx context.Context, bookID string) (domain.Book, error) {
	if strings.TrimSpace(bookID) == "" {
		return domain.Book{}, fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	return s.store.Get(ctx, bookID)
}

func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	return s.queue.Do(ctx, bookID, "delete book", func(context.Context) error {
		return s.store.Delete(ctx, bookID)
	})
}

// UpdateCursor is the write-through for a reconciled location. A
// successful write counts today as a reading day.
func (s *BookService) UpdateCursor(ctx context.Context, bookID, cursor string, progress float64, page int) error {
	_, err := s.mutate(ctx, bookID, "update cursor", func(book *domain.Book) error {
		book.MoveCursor(cursor, progress, page, s.clock.Now())
		return nil
	})
	if err != nil {
		return err
	}
	s.recordDay(ctx, bookID)
	return nil
}

// ApproximateProgress advances the fraction by step when the renderer
// cannot say where the reader is.
func (s *BookService) ApproximateProgress(ctx context.Context, bookID string, step float64) (float64, error) {
	book, err := s.mutate(ctx, bookID, "approximate progress", func(book *domain.Book) error {
		book.AdvanceProgress(step, s.clock.Now())
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.recordDay(ctx, bookID)
	return book.Progress, nil
}

func (s *BookService) AppendSession(ctx context.Context, bookID string, pagesRead int, durationMs int64, maxLocation int) error {
	session := domain.Session{
		OccurredAt:  s.clock.Now(),
		PagesRead:   pagesRead,
		DurationMs:  durationMs,
		MaxLocation: maxLocation,
	}
	_, err := s.mutate(ctx, bookID, "append session", func(book *domain.Book) error {
		return book.AppendSession(session)
	})
	if err != nil {
		return err
	}
	s.recordDay(ctx, bookID)
	return nil
}

func (s *BookService) LogPhysicalSession(ctx context.Context, bookID string, newPage int, durationMs int64) (domain.Session, error) {
	var session domain.Session
	_, err := s.mutate(ctx, bookID, "log physical session", func(book *domain.Book) error {
		var err error
		session, err = book.LogPhysical(newPage, durationMs, s.clock.Now())
		return err
	})
	if err != nil {
		return domain.Session{}, err
	}
	s.recordDay(ctx, bookID)
	return session, nil
}

func (s *BookService) CorrectPage(ctx context.Context, bookID string, page int) (domain.Book, error) {
	return s.mutate(ctx, bookID, "correct page", func(book *domain.Book) error {
		return book.CorrectPage(page)
	})
}

func (s *BookService) SetGenre(ctx context.Context, bookID string, genre domain.Genre) (domain.Book, error) {
	return s.mutate(ctx, bookID, "set genre", func(book *domain.Book) error {
		return book.SetGenre(genre)
	})
}

func (s *BookService) AddHighlight(ctx context.Context, bookID, rangeRef, text string, color domain.Color, note string) (domain.Highlight, error) {
	if color == "" {
		color = domain.ColorYellow
	}
	h := domain.Highlight{
		ID:        s.idGen.New(),
		Range:     strings.TrimSpace(rangeRef),
		Text:      strings.TrimSpace(text),
		Color:     color,
		Note:      strings.TrimSpace(note),
		CreatedAt: s.clock.Now(),
	}
	_, err := s.mutate(ctx, bookID, "add highlight", func(book *domain.Book) error {
		return book.AddHighlight(h)
	})
	if err != nil {
		return domain.Highlight{}, err
	}
	return h, nil
}

func (s *BookService) DeleteHighlight(ctx context.Context, bookID, highlightID string) error {
	_, err := s.mutate(ctx, bookID, "delete highlight", func(book *domain.Book) error {
		_, err := book.RemoveHighlight(highlightID)
		return err
	})
	return err
}

func (s *BookService) SaveSummary(ctx context.Context, bookID, chapterName, text string) (domain.Summary, error) {
	summary := domain.Summary{
		ID:          s.idGen.New(),
		ChapterName: strings.TrimSpace(chapterName),
		Text:        strings.TrimSpace(text),
		CreatedAt:   s.clock.Now(),
	}
	_, err := s.mutate(ctx, bookID, "save summary", func(book *domain.Book) error {
		return book.AddSummary(summary)
	})
	if err != nil {
		return domain.Summary{}, err
	}
	return summary, nil
}

func (s *BookService) DeleteSummary(ctx context.Context, bookID, summaryID string) error {
	_, err := s.mutate(ctx, bookID, "delete summary", func(book *domain.Book) error {
		return book.RemoveSummary(summaryID)
	})
	return err
}

func (s *BookService) AddPrediction(ctx context.Context, bookID, text string) (domain.Prediction, error) {
	var p domain.Prediction
	_, err := s.mutate(ctx, bookID, "add prediction", func(book *domain.Book) error {
		var err error
		p, err = book.AddPrediction(text, s.clock.Now())
		return err
	})
	if err != nil {
		return domain.Prediction{}, err
	}
	return p, nil
}

func (s *BookService) SetPredictionOutcome(ctx context.Context, bookID string, createdAt time.Time, outcome domain.Outcome) (domain.Prediction, error) {
	var p domain.Prediction
	_, err := s.mutate(ctx, bookID, "set prediction outcome", func(book *domain.Book) error {
		var err error
		p, err = book.SetPredictionOutcome(createdAt, outcome)
		return err
	})
	if err != nil {
		return domain.Prediction{}, err
	}
	return p, nil
}

func (s *BookService) Stats(ctx context.Context) (domain.Stats, error) {
	books, err := s.store.List(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(books), nil
}

func (s *BookService) ExportNotes(ctx context.Context, bookID string) (string, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return "", err
	}
	return s.exporter.Export(ctx, book)
}

// mutate runs a read-modify-write of one book behind that book's queue.
func (s *BookService) mutate(ctx context.Context, bookID, op string, fn func(*domain.Book) error) (domain.Book, error) {
	if strings.TrimSpace(bookID) == "" {
		return domain.Book{}, fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	var out domain.Book
	err := s.queue.Do(ctx, bookID, op, func(context.Context) error {
		book, err := s.store.Get(ctx, bookID)
		if err != nil {
			return err
		}
		if err := fn(&book); err != nil {
			return err
		}
		if err := s.store.Put(ctx, book); err != nil {
			return err
		}
		out = book
		return nil
	})
	return out, err
}

func (s *BookService) recordDay(ctx context.Context, bookID string) {
	if s.days == nil {
		return
	}
	if err := s.days.RecordReadingDay(ctx); err != nil {
		s.logger.Warn("record reading day failed", "book_id", bookID, "err", err)
	}
}
