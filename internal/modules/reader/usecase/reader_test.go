package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"atheneum/internal/modules/reader/domain"
	"atheneum/internal/modules/reader/dto"
	readerin "atheneum/internal/modules/reader/port/in"
	readerout "atheneum/internal/modules/reader/port/out"
	"atheneum/internal/modules/reader/service"
	"atheneum/internal/modules/reader/usecase"
	apperrors "atheneum/internal/platform/errors"
	"atheneum/internal/platform/writequeue"
)

type fakeRenderer struct {
	mu          sync.Mutex
	sections    []string
	toc         []domain.TOCItem
	degraded    bool
	openErr     error
	current     int
	events      chan domain.LocationEvent
	annotations map[string]string
	gotos       []domain.Target
	closed      bool
}

func newFakeRenderer(sections ...string) *fakeRenderer {
	return &fakeRenderer{
		sections:    sections,
		events:      make(chan domain.LocationEvent, 16),
		annotations: map[string]string{},
	}
}

func (r *fakeRenderer) Open(context.Context, string) error { return r.openErr }
func (r *fakeRenderer) TOC() []domain.TOCItem              { return r.toc }
func (r *fakeRenderer) SectionCount() int                  { return len(r.sections) }

func (r *fakeRenderer) Section(i int) (string, error) {
	if i < 0 || i >= len(r.sections) {
		return "", fmt.Errorf("%w: no section %d", apperrors.ErrRenderer, i)
	}
	return r.sections[i], nil
}

func (r *fakeRenderer) GoTo(_ context.Context, target domain.Target) error {
	r.mu.Lock()
	r.gotos = append(r.gotos, target)
	r.mu.Unlock()
	if target.Token != "" {
		section, ok := domain.ParseSectionToken(target.Token)
		if !ok || section >= len(r.sections) {
			return fmt.Errorf("%w: bad token", apperrors.ErrInvalidInput)
		}
		return r.move(section)
	}
	return r.move(int(target.Fraction * float64(len(r.sections))))
}

func (r *fakeRenderer) Next(context.Context) error { return r.move(r.current + 1) }
func (r *fakeRenderer) Prev(context.Context) error { return r.move(r.current - 1) }

func (r *fakeRenderer) move(i int) error {
	if i >= len(r.sections) {
		i = len(r.sections) - 1
	}
	if i < 0 {
		i = 0
	}
	r.current = i
	if r.degraded {
		r.events <- domain.PdfLocation{}
		return nil
	}
	r.events <- domain.EbookLocation{
		CFI:          domain.SectionToken(i),
		Fraction:     float64(i+1) / float64(len(r.sections)),
		SectionIndex: i,
		SectionTotal: len(r.sections),
	}
	return nil
}

func (r *fakeRenderer) AddAnnotation(rng, color string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.annotations[rng] = color
	return nil
}

func (r *fakeRenderer) DeleteAnnotation(rng string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.annotations, rng)
	return nil
}

func (r *fakeRenderer) Events() <-chan domain.LocationEvent { return r.events }

func (r *fakeRenderer) Close() error {
	r.closed = true
	return nil
}

type fakeFactory struct {
	renderers []*fakeRenderer
}

func (f *fakeFactory) ForKind(string) (readerout.Renderer, error) {
	if len(f.renderers) == 0 {
		return nil, errors.New("no renderer left")
	}
	r := f.renderers[0]
	f.renderers = f.renderers[1:]
	return r, nil
}

type fakeBooks map[string]domain.BookRef

func (b fakeBooks) Resolve(_ context.Context, id string) (domain.BookRef, error) {
	book, ok := b[id]
	if !ok {
		return domain.BookRef{}, apperrors.ErrNotFound
	}
	return book, nil
}

type cursorWrite struct {
	bookID   string
	cursor   string
	progress float64
}

type fakeProgress struct {
	mu            sync.Mutex
	writes        []cursorWrite
	approximation []string
}

func (p *fakeProgress) UpdateCursor(_ context.Context, bookID, cursor string, progress float64, _ int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, cursorWrite{bookID: bookID, cursor: cursor, progress: progress})
	return nil
}

func (p *fakeProgress) Approximate(_ context.Context, bookID string, step float64) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if step != domain.DegradedProgressStep {
		return 0, fmt.Errorf("unexpected step %v", step)
	}
	p.approximation = append(p.approximation, bookID)
	return 0, nil
}

type fakeHighlights struct {
	added   []string
	deleted []string
}

func (h *fakeHighlights) AddHighlight(_ context.Context, _, rng, _, _ string) (string, error) {
	h.added = append(h.added, rng)
	return fmt.Sprintf("h%d", len(h.added)), nil
}

func (h *fakeHighlights) DeleteHighlight(_ context.Context, _, id string) error {
	h.deleted = append(h.deleted, id)
	return nil
}

type fakeActivity struct {
	locations []int
}

func (a *fakeActivity) RecordLocation(_ context.Context, _ string, index int) error {
	a.locations = append(a.locations, index)
	return nil
}

func (a *fakeActivity) RecordInteraction(context.Context) error {
	return apperrors.ErrNoActiveSession
}

type harness struct {
	uc         readerin.Usecase
	progress   *fakeProgress
	highlights *fakeHighlights
	activity   *fakeActivity
}

func newHarness(t *testing.T, books fakeBooks, renderers ...*fakeRenderer) harness {
	t.Helper()
	queue := writequeue.New(nil)
	t.Cleanup(queue.Close)
	h := harness{progress: &fakeProgress{}, highlights: &fakeHighlights{}, activity: &fakeActivity{}}
	svc := service.NewReaderService(books, &fakeFactory{renderers: renderers}, h.progress, h.highlights, h.activity, queue, nil)
	h.uc = usecase.NewInteractor(svc)
	return h
}

func nextEvent(t *testing.T, out dto.OpenOutput) dto.EventInput {
	t.Helper()
	select {
	case ev := <-out.Events:
		return dto.EventInput{Generation: out.Generation, Event: ev}
	default:
		t.Fatalf("renderer reported no location")
		return dto.EventInput{}
	}
}

func TestOpenRestoresCursorAndWritesThrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newFakeRenderer("one", "two", "three", "four")
	h := newHarness(t, fakeBooks{"b1": {ID: "b1", Kind: "ebook", Title: "Dune", FilePath: "/books/dune.epub", Cursor: "epubcfi(/6/6)", Progress: 0.75}}, r)

	opened, err := h.uc.Open(ctx, dto.OpenInput{BookID: "b1"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	loc, err := h.uc.Handle(ctx, nextEvent(t, opened))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if loc.Section != 2 || loc.Page != 3 || loc.Total != 4 || loc.Token != "epubcfi(/6/6)" {
		t.Fatalf("unexpected location: %+v", loc)
	}

	if err := h.uc.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := h.uc.Handle(ctx, nextEvent(t, opened)); err != nil {
		t.Fatalf("handle next: %v", err)
	}
	if err := h.uc.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	h.progress.mu.Lock()
	defer h.progress.mu.Unlock()
	if len(h.progress.writes) != 2 {
		t.Fatalf("expected two cursor writes, got %+v", h.progress.writes)
	}
	last := h.progress.writes[1]
	if last.cursor != "epubcfi(/6/8)" || last.progress != 1 {
		t.Fatalf("last write should be the final position: %+v", last)
	}
	if fmt.Sprint(h.activity.locations) != "[2 3]" {
		t.Fatalf("locations not forwarded in order: %v", h.activity.locations)
	}
	if !r.closed {
		t.Fatalf("renderer should be closed")
	}
}

func TestOpenFallsBackToProgressWhenCursorIsForeign(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newFakeRenderer("a", "b", "c", "d")
	h := newHarness(t, fakeBooks{"b1": {ID: "b1", Kind: "ebook", FilePath: "/x.epub", Cursor: "epubcfi(/6/40)", Progress: 0.5}}, r)

	opened, err := h.uc.Open(ctx, dto.OpenInput{BookID: "b1"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	loc, err := h.uc.Handle(ctx, nextEvent(t, opened))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if loc.Section != 2 {
		t.Fatalf("expected the progress fraction to pick section 2, got %d", loc.Section)
	}
}

func TestEventsFromPreviousBookAreStale(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	first := newFakeRenderer("a", "b")
	second := newFakeRenderer("c", "d")
	h := newHarness(t, fakeBooks{
		"b1": {ID: "b1", Kind: "ebook", FilePath: "/1.epub"},
		"b2": {ID: "b2", Kind: "ebook", FilePath: "/2.epub"},
	}, first, second)

	one, err := h.uc.Open(ctx, dto.OpenInput{BookID: "b1"})
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	stale := nextEvent(t, one)
	two, err := h.uc.Open(ctx, dto.OpenInput{BookID: "b2"})
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	if !first.closed {
		t.Fatalf("switching books should close the previous renderer")
	}

	loc, err := h.uc.Handle(ctx, stale)
	if err != nil {
		t.Fatalf("handle stale: %v", err)
	}
	if !loc.Stale {
		t.Fatalf("event from the first book should be stale")
	}
	if _, err := h.uc.Handle(ctx, nextEvent(t, two)); err != nil {
		t.Fatalf("handle current: %v", err)
	}
	if err := h.uc.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	h.progress.mu.Lock()
	defer h.progress.mu.Unlock()
	for _, w := range h.progress.writes {
		if w.bookID != "b2" {
			t.Fatalf("stale event wrote to %s", w.bookID)
		}
	}
}

func TestDegradedPdfApproximatesProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newFakeRenderer("page")
	r.degraded = true
	h := newHarness(t, fakeBooks{"p1": {ID: "p1", Kind: "pdf", FilePath: "/paper.pdf", Progress: 0.5}}, r)

	opened, err := h.uc.Open(ctx, dto.OpenInput{BookID: "p1"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	loc, err := h.uc.Handle(ctx, nextEvent(t, opened))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !loc.Degraded || loc.Percentage != 0.51 {
		t.Fatalf("expected degraded +1%%: %+v", loc)
	}
	if err := h.uc.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	h.progress.mu.Lock()
	defer h.progress.mu.Unlock()
	if len(h.progress.writes) != 0 || len(h.progress.approximation) != 1 {
		t.Fatalf("expected one approximation and no cursor write: %+v", h.progress)
	}
	if len(h.activity.locations) != 1 || h.activity.locations[0] != domain.NoLocation {
		t.Fatalf("degraded events count as activity without a page: %v", h.activity.locations)
	}
}

func TestContextAndHighlights(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	chapter := "The Dunes\n\nA beginning is the time for taking the most delicate care.\n\nThe balances must be correct, said the reverend mother."
	r := newFakeRenderer("cover", chapter)
	r.toc = []domain.TOCItem{{Label: "Book One", Section: 0}, {Label: "Dune", Section: 1}}
	h := newHarness(t, fakeBooks{"b1": {
		ID: "b1", Kind: "ebook", Title: "Dune", Author: "Frank Herbert", FilePath: "/d.epub", Cursor: "epubcfi(/6/4)",
		Annotations: []domain.Annotation{{Range: "epubcfi(/6/2)!/p0", Color: "gray"}},
	}}, r)

	opened, err := h.uc.Open(ctx, dto.OpenInput{BookID: "b1"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if r.annotations["epubcfi(/6/2)!/p0"] != "gray" {
		t.Fatalf("stored highlights should be redrawn on open")
	}
	if _, err := h.uc.Handle(ctx, nextEvent(t, opened)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rc, err := h.uc.Context(ctx)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if rc.ChapterName != "Dune" || len(rc.PreviousChapters) != 1 || rc.PreviousChapters[0] != "Book One" {
		t.Fatalf("unexpected chapter context: %+v", rc)
	}
	if rc.StartAnchor != "A beginning is the time for taking the most delicate care." {
		t.Fatalf("unexpected start anchor %q", rc.StartAnchor)
	}

	hl, err := h.uc.Highlight(ctx, dto.HighlightInput{Paragraph: 1, Color: "yellow"})
	if err != nil {
		t.Fatalf("highlight: %v", err)
	}
	if hl.Range != "epubcfi(/6/4)!/p1" || r.annotations[hl.Range] != "yellow" {
		t.Fatalf("highlight not drawn at its range: %+v", hl)
	}
	sur, err := h.uc.Surrounding(ctx, 2)
	if err != nil {
		t.Fatalf("surrounding: %v", err)
	}
	if sur.Text != "The balances must be correct, said the reverend mother." {
		t.Fatalf("unexpected selection %q", sur.Text)
	}
	if err := h.uc.RemoveHighlight(ctx, dto.RemoveHighlightInput{ID: hl.ID, Range: hl.Range}); err != nil {
		t.Fatalf("remove highlight: %v", err)
	}
	if _, ok := r.annotations[hl.Range]; ok || len(h.highlights.deleted) != 1 {
		t.Fatalf("highlight should be erased")
	}
}

func TestOpenReportsRendererFailure(t *testing.T) {
	t.Parallel()
	r := newFakeRenderer("a")
	r.openErr = errors.New("zip: not a valid zip file")
	h := newHarness(t, fakeBooks{"b1": {ID: "b1", Kind: "ebook", FilePath: "/broken.epub"}}, r)

	_, err := h.uc.Open(context.Background(), dto.OpenInput{BookID: "b1"})
	if !errors.Is(err, apperrors.ErrRenderer) {
		t.Fatalf("expected renderer error, got %v", err)
	}
	if _, err := h.uc.Passage(context.Background()); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("nothing should be open after a failed open, got %v", err)
	}
}

func TestChromeFollowsTaps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, fakeBooks{"b1": {ID: "b1", Kind: "ebook", FilePath: "/x.epub"}}, newFakeRenderer("a"))
	if _, err := h.uc.Open(ctx, dto.OpenInput{BookID: "b1"}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if c := h.uc.OpenPanel(ctx, "toc"); c.Panel != "toc" || !c.ControlsVisible {
		t.Fatalf("toc panel should open: %+v", c)
	}
	if c := h.uc.Tap(ctx); c.ControlsVisible || c.Panel != "" {
		t.Fatalf("tap should hide controls and the panel: %+v", c)
	}
	if c := h.uc.SetFocus(ctx, true); !c.InFocus {
		t.Fatalf("focus should start: %+v", c)
	}
	if c := h.uc.Tap(ctx); !c.ExitVisible {
		t.Fatalf("tap in focus shows the exit control: %+v", c)
	}
	if err := h.uc.Interact(ctx); err != nil {
		t.Fatalf("interaction without a session should be ignored: %v", err)
	}
}
