package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"atheneum/internal/modules/reader/domain"
	readerout "atheneum/internal/modules/reader/port/out"
	apperrors "atheneum/internal/platform/errors"
	"atheneum/internal/platform/writequeue"
)

var errNotOpen = fmt.Errorf("%w: no book is open", apperrors.ErrInvalidInput)

// Opened describes a freshly attached renderer. Events must be handed back
// to Handle together with Generation.
type Opened struct {
	Generation uint64
	Book       domain.BookRef
	TOC        []domain.TOCItem
	Sections   int
	Events     <-chan domain.LocationEvent
}

// Located is the reconciled position after one event.
type Located struct {
	BookID      string
	Record      domain.LocationRecord
	Section     int
	ChapterName string
	Degraded    bool
	Stale       bool
}

type Passage struct {
	Token      string
	Section    int
	Paragraphs []string
}

type Highlighted struct {
	ID    string
	Range string
	Text  string
	Color string
}

// attachment is the one renderer the service currently listens to.
type attachment struct {
	gen      uint64
	book     domain.BookRef
	renderer readerout.Renderer
	chrome   domain.Chrome
	record   domain.LocationRecord
	progress float64
	section  int
	degraded bool
}

// ReaderService reconciles renderer events with the library and the
// session tracker. Cursor writes go through queue so they land in event
// order without blocking the caller.
type ReaderService struct {
	books      readerout.BookResolver
	renderers  readerout.RendererFactory
	progress   readerout.ProgressPort
	highlights readerout.HighlightPort
	activity   readerout.ActivityPort
	queue      *writequeue.Queue
	logger     *slog.Logger

	mu  sync.Mutex
	gen uint64
	att *attachment
}

func NewReaderService(
	books readerout.BookResolver,
	renderers readerout.RendererFactory,
	progress readerout.ProgressPort,
	highlights readerout.HighlightPort,
	activity readerout.ActivityPort,
	queue *writequeue.Queue,
	logger *slog.Logger,
) *ReaderService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ReaderService{
		books:      books,
		renderers:  renderers,
		progress:   progress,
		highlights: highlights,
		activity:   activity,
		queue:      queue,
		logger:     logger,
	}
}

// Open detaches whatever was open, attaches a renderer for bookID and moves
// it to the stored cursor, falling back to the stored fraction.
func (s *ReaderService) Open(ctx context.Context, bookID string) (Opened, error) {
	if strings.TrimSpace(bookID) == "" {
		return Opened{}, fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	if err := s.Close(ctx); err != nil {
		s.logger.Warn("close previous renderer failed", "err", err)
	}

	book, err := s.books.Resolve(ctx, bookID)
	if err != nil {
		return Opened{}, err
	}
	if book.FilePath == "" {
		return Opened{}, fmt.Errorf("%w: %q has no file to read", apperrors.ErrInvalidInput, book.Title)
	}
	renderer, err := s.renderers.ForKind(book.Kind)
	if err != nil {
		return Opened{}, err
	}
	if err := renderer.Open(ctx, book.FilePath); err != nil {
		_ = renderer.Close()
		if !errors.Is(err, apperrors.ErrRenderer) {
			err = fmt.Errorf("%w: %w", apperrors.ErrRenderer, err)
		}
		return Opened{}, err
	}
	for _, a := range book.Annotations {
		if err := renderer.AddAnnotation(a.Range, a.Color); err != nil {
			s.logger.Warn("restore annotation failed", "book_id", book.ID, "range", a.Range, "err", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.att = &attachment{
		gen:      s.gen,
		book:     book,
		renderer: renderer,
		chrome:   domain.NewChrome(),
		progress: book.Progress,
	}
	if err := s.restore(ctx, renderer, book); err != nil {
		s.att = nil
		_ = renderer.Close()
		return Opened{}, err
	}
	return Opened{
		Generation: s.gen,
		Book:       book,
		TOC:        renderer.TOC(),
		Sections:   renderer.SectionCount(),
		Events:     renderer.Events(),
	}, nil
}

func (s *ReaderService) restore(ctx context.Context, renderer readerout.Renderer, book domain.BookRef) error {
	if book.Cursor != "" {
		err := renderer.GoTo(ctx, domain.Target{Token: book.Cursor})
		if err == nil {
			return nil
		}
		s.logger.Warn("stored cursor rejected, using progress", "book_id", book.ID, "cursor", book.Cursor, "err", err)
	}
	if err := renderer.GoTo(ctx, domain.Target{Fraction: book.Progress}); err != nil {
		return fmt.Errorf("%w: restore position: %w", apperrors.ErrRenderer, err)
	}
	return nil
}

// Handle reconciles one renderer event. Events from an earlier attachment
// are reported as stale and change nothing.
func (s *ReaderService) Handle(ctx context.Context, gen uint64, ev domain.LocationEvent) (Located, error) {
	if ev == nil {
		return Located{}, fmt.Errorf("%w: empty location event", apperrors.ErrInvalidInput)
	}
	s.mu.Lock()
	att := s.att
	if att == nil || att.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("stale location event dropped", "generation", gen)
		return Located{Stale: true}, nil
	}
	rec := domain.Reconcile(ev, att.progress)
	att.record = rec.Record
	att.progress = rec.Record.Percentage
	att.degraded = rec.Degraded
	if rec.Location != domain.NoLocation {
		att.section = rec.Location
	}
	bookID := att.book.ID
	located := s.locatedLocked(att)
	s.mu.Unlock()

	switch {
	case rec.Cursor != "":
		cursor, fraction, page := rec.Cursor, rec.Record.Percentage, rec.Page
		s.queue.Submit(bookID, "update-cursor", func(ctx context.Context) error {
			return s.progress.UpdateCursor(ctx, bookID, cursor, fraction, page)
		})
	case rec.Degraded:
		s.queue.Submit(bookID, "approximate-progress", func(ctx context.Context) error {
			_, err := s.progress.Approximate(ctx, bookID, domain.DegradedProgressStep)
			return err
		})
	}
	// A page-less event still counts as reading time; NoLocation marks
	// activity without visiting a page.
	if s.activity != nil {
		if err := s.activity.RecordLocation(ctx, bookID, rec.Location); err != nil {
			s.logger.Debug("location not tracked", "book_id", bookID, "location", rec.Location, "err", err)
		}
	}
	return located, nil
}

func (s *ReaderService) locatedLocked(att *attachment) Located {
	name, _ := s.chapterLocked(att)
	return Located{
		BookID:      att.book.ID,
		Record:      att.record,
		Section:     att.section,
		ChapterName: name,
		Degraded:    att.degraded,
	}
}

func (s *ReaderService) chapterLocked(att *attachment) (string, []string) {
	toc := att.renderer.TOC()
	if len(toc) == 0 && att.book.Kind == "pdf" {
		return "Page " + strconv.Itoa(att.section+1), nil
	}
	return domain.ChapterContext(toc, att.section)
}

func (s *ReaderService) Location() (Located, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.att == nil {
		return Located{}, errNotOpen
	}
	return s.locatedLocked(s.att), nil
}

func (s *ReaderService) Next(ctx context.Context) error {
	return s.navigate(func(r readerout.Renderer) error { return r.Next(ctx) })
}

func (s *ReaderService) Prev(ctx context.Context) error {
	return s.navigate(func(r readerout.Renderer) error { return r.Prev(ctx) })
}

func (s *ReaderService) GoTo(ctx context.Context, target domain.Target) error {
	if target.Fraction < 0 || target.Fraction > 1 {
		return fmt.Errorf("%w: fraction must be between 0 and 1", apperrors.ErrInvalidInput)
	}
	return s.navigate(func(r readerout.Renderer) error { return r.GoTo(ctx, target) })
}

func (s *ReaderService) navigate(fn func(readerout.Renderer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.att == nil {
		return errNotOpen
	}
	return fn(s.att.renderer)
}

// Interact records raw user activity such as scrolling within a section.
func (s *ReaderService) Interact(ctx context.Context) error {
	if s.activity == nil {
		return nil
	}
	err := s.activity.RecordInteraction(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return nil
	}
	return err
}

func (s *ReaderService) Passage() (Passage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.att == nil {
		return Passage{}, errNotOpen
	}
	paragraphs, err := s.paragraphsLocked(s.att)
	if err != nil {
		return Passage{}, err
	}
	return Passage{Token: s.tokenLocked(s.att), Section: s.att.section, Paragraphs: paragraphs}, nil
}

func (s *ReaderService) paragraphsLocked(att *attachment) ([]string, error) {
	text, err := att.renderer.Section(att.section)
	if err != nil {
		return nil, err
	}
	return domain.Paragraphs(text), nil
}

func (s *ReaderService) tokenLocked(att *attachment) string {
	if att.book.Kind == "pdf" {
		return domain.PageToken(att.section)
	}
	return domain.SectionToken(att.section)
}

// Surrounding returns a paragraph of the current section with its
// neighbours, the context an explanation request needs.
func (s *ReaderService) Surrounding(paragraph int) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.att == nil {
		return "", "", errNotOpen
	}
	paragraphs, err := s.paragraphsLocked(s.att)
	if err != nil {
		return "", "", err
	}
	if paragraph < 0 || paragraph >= len(paragraphs) {
		return "", "", fmt.Errorf("%w: paragraph %d out of range", apperrors.ErrInvalidInput, paragraph)
	}
	from, to := max(0, paragraph-1), min(len(paragraphs), paragraph+2)
	return paragraphs[paragraph], strings.Join(paragraphs[from:to], "\n\n"), nil
}

// Highlight stores a paragraph of the current section as a highlight and
// draws it on the renderer.
func (s *ReaderService) Highlight(ctx context.Context, paragraph int, color string) (Highlighted, error) {
	s.mu.Lock()
	att := s.att
	if att == nil {
		s.mu.Unlock()
		return Highlighted{}, errNotOpen
	}
	paragraphs, err := s.paragraphsLocked(att)
	if err != nil {
		s.mu.Unlock()
		return Highlighted{}, err
	}
	if paragraph < 0 || paragraph >= len(paragraphs) {
		s.mu.Unlock()
		return Highlighted{}, fmt.Errorf("%w: paragraph %d out of range", apperrors.ErrInvalidInput, paragraph)
	}
	rng := domain.ParagraphRange(s.tokenLocked(att), paragraph)
	text := paragraphs[paragraph]
	s.mu.Unlock()

	id, err := s.highlights.AddHighlight(ctx, att.book.ID, rng, text, color)
	if err != nil {
		return Highlighted{}, err
	}
	if err := att.renderer.AddAnnotation(rng, color); err != nil {
		s.logger.Warn("draw annotation failed", "book_id", att.book.ID, "range", rng, "err", err)
	}
	return Highlighted{ID: id, Range: rng, Text: text, Color: color}, nil
}

func (s *ReaderService) RemoveHighlight(ctx context.Context, highlightID, rng string) error {
	s.mu.Lock()
	att := s.att
	s.mu.Unlock()
	if att == nil {
		return errNotOpen
	}
	if err := s.highlights.DeleteHighlight(ctx, att.book.ID, highlightID); err != nil {
		return err
	}
	if rng != "" {
		if err := att.renderer.DeleteAnnotation(rng); err != nil {
			s.logger.Warn("erase annotation failed", "book_id", att.book.ID, "range", rng, "err", err)
		}
	}
	return nil
}

// Context assembles what the AI gateway needs to know about the current
// position. Missing section text only leaves the anchors empty.
func (s *ReaderService) Context() (domain.ReadingContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	att := s.att
	if att == nil {
		return domain.ReadingContext{}, errNotOpen
	}
	name, previous := s.chapterLocked(att)
	rc := domain.ReadingContext{
		BookID:           att.book.ID,
		Title:            att.book.Title,
		Author:           att.book.Author,
		ChapterName:      name,
		Progress:         att.progress,
		PreviousChapters: previous,
		SectionIndex:     att.section,
	}
	if paragraphs, err := s.paragraphsLocked(att); err == nil {
		rc.Anchors = domain.BuildAnchors(paragraphs)
	}
	return rc, nil
}

func (s *ReaderService) Tap() domain.Chrome {
	return s.chrome(domain.Chrome.Tap)
}

func (s *ReaderService) OpenPanel(p domain.Panel) domain.Chrome {
	return s.chrome(func(c domain.Chrome) domain.Chrome { return c.Open(p) })
}

func (s *ReaderService) ClosePanel() domain.Chrome {
	return s.chrome(domain.Chrome.ClosePanel)
}

func (s *ReaderService) SetFocus(on bool) domain.Chrome {
	if on {
		return s.chrome(domain.Chrome.EnterFocus)
	}
	return s.chrome(domain.Chrome.ExitFocus)
}

func (s *ReaderService) chrome(fn func(domain.Chrome) domain.Chrome) domain.Chrome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.att == nil {
		return domain.NewChrome()
	}
	s.att.chrome = fn(s.att.chrome)
	return s.att.chrome
}

// Close detaches from the renderer so its remaining events go stale, then
// waits for queued cursor writes.
func (s *ReaderService) Close(_ context.Context) error {
	s.mu.Lock()
	att := s.att
	s.att = nil
	s.gen++
	s.mu.Unlock()
	var err error
	if att != nil {
		err = att.renderer.Close()
	}
	s.queue.Flush()
	return err
}
