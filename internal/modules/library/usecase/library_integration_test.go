package usecase_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	libraryout "atheneum/internal/modules/library/adapter/out"
	"atheneum/internal/modules/library/dto"
	libraryin "atheneum/internal/modules/library/port/in"
	"atheneum/internal/modules/library/service"
	"atheneum/internal/modules/library/usecase"
	apperrors "atheneum/internal/platform/errors"
	"atheneum/internal/platform/writequeue"

	_ "modernc.org/sqlite"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (g *seqID) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

type countingDays struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (d *countingDays) RecordReadingDay(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.err
}

type harness struct {
	uc     libraryin.Usecase
	days   *countingDays
	dbPath string
	notes  string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "atheneum.db")
	store, err := libraryout.NewSQLiteBookStore(dbPath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	queue := writequeue.New(nil)
	t.Cleanup(queue.Close)
	days := &countingDays{}
	notes := filepath.Join(dir, "notes")
	clk := &stepClock{now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)}
	svc := service.NewBookService(clk, &seqID{}, store, libraryout.NewVaultNotesExporter(notes), days, queue, nil)
	return harness{uc: usecase.NewInteractor(svc), days: days, dbPath: dbPath, notes: notes}
}

func TestAddListGetDeleteBook(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	ebook, err := h.uc.AddBook(ctx, dto.AddBookInput{Kind: "ebook", FilePath: "/books/Middlemarch.epub", Author: "George Eliot"})
	if err != nil {
		t.Fatalf("add ebook: %v", err)
	}
	if ebook.Title != "Middlemarch" {
		t.Fatalf("title should default to file name, got %q", ebook.Title)
	}
	paper, err := h.uc.AddBook(ctx, dto.AddBookInput{Kind: "physical", Title: "Dune"})
	if err != nil {
		t.Fatalf("add physical: %v", err)
	}
	if paper.TotalPages != 300 {
		t.Fatalf("expected default 300 pages, got %d", paper.TotalPages)
	}
	if _, err := h.uc.AddBook(ctx, dto.AddBookInput{Kind: "pdf", Title: "No file"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("pdf without file should be invalid, got %v", err)
	}

	if err := h.uc.UpdateCursor(ctx, dto.UpdateCursorInput{BookID: ebook.ID, Cursor: "epubcfi(/6/8)", Progress: 0.2, Page: 3}); err != nil {
		t.Fatalf("update cursor: %v", err)
	}
	list, err := h.uc.ListBooks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != ebook.ID {
		t.Fatalf("most recently read book should come first: %+v", list)
	}

	detail, err := h.uc.GetBook(ctx, ebook.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Cursor != "epubcfi(/6/8)" || detail.CurrentPage != 3 || detail.IsNew {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if h.days.calls != 1 {
		t.Fatalf("cursor write should record a reading day, got %d", h.days.calls)
	}

	if err := h.uc.DeleteBook(ctx, paper.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := h.uc.GetBook(ctx, paper.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("deleted book should be not found, got %v", err)
	}
	if err := h.uc.DeleteBook(ctx, paper.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestSessionsAndStats(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	ebook, _ := h.uc.AddBook(ctx, dto.AddBookInput{Kind: "ebook", Title: "Emma", FilePath: "/books/emma.epub"})
	paper, _ := h.uc.AddBook(ctx, dto.AddBookInput{Kind: "physical", Title: "Dune", TotalPages: 400})

	if err := h.uc.AppendSession(ctx, dto.AppendSessionInput{BookID: ebook.ID, PagesRead: 3, DurationMs: 50000, MaxLocation: 7}); err != nil {
		t.Fatalf("append session: %v", err)
	}
	if _, err := h.uc.LogPhysicalSession(ctx, dto.LogPhysicalInput{BookID: paper.ID, NewPage: 0, DurationMs: 1000}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("non-advancing page should be rejected, got %v", err)
	}
	session, err := h.uc.LogPhysicalSession(ctx, dto.LogPhysicalInput{BookID: paper.ID, NewPage: 27, DurationMs: 1_750_000})
	if err != nil {
		t.Fatalf("log physical: %v", err)
	}
	if session.PagesRead != 27 {
		t.Fatalf("expected 27 pages, got %d", session.PagesRead)
	}

	detail, _ := h.uc.GetBook(ctx, ebook.ID)
	if detail.CurrentPage != 7 || len(detail.Sessions) != 1 || detail.Sessions[0].DurationMs != 50000 {
		t.Fatalf("session not persisted as expected: %+v", detail)
	}

	stats, err := h.uc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalBooks != 2 || stats.TotalPages != 30 || stats.TotalDurationMs != 1_800_000 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.PagesPerMinute != 1 {
		t.Fatalf("expected 1 page/min, got %v", stats.PagesPerMinute)
	}
	if h.days.calls != 2 {
		t.Fatalf("each session should record a reading day, got %d", h.days.calls)
	}
}

func TestReadingDayFailureDoesNotFailWrite(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.days.err = errors.New("disk full")

	book, _ := h.uc.AddBook(ctx, dto.AddBookInput{Kind: "pdf", Title: "Paper", FilePath: "/p.pdf"})
	progress, err := h.uc.ApproximateProgress(ctx, book.ID, 0)
	if err != nil {
		t.Fatalf("approximate progress: %v", err)
	}
	if progress != 0.01 {
		t.Fatalf("expected +1%% step, got %v", progress)
	}
}

func TestHighlightsSummariesAndExport(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	book, _ := h.uc.AddBook(ctx, dto.AddBookInput{Kind: "ebook", Title: "The Hobbit", FilePath: "/b/hobbit.epub"})

	first, err := h.uc.AddHighlight(ctx, dto.AddHighlightInput{BookID: book.ID, Range: "epubcfi(/6/2!/4/2,/1:0,/1:9)", Text: "In a hole", Color: "yellow"})
	if err != nil {
		t.Fatalf("add highlight: %v", err)
	}
	explained, err := h.uc.AddHighlight(ctx, dto.AddHighlightInput{BookID: book.ID, Text: "hobbit", Color: "purple", Note: "A small person."})
	if err != nil {
		t.Fatalf("add explanation: %v", err)
	}
	if _, err := h.uc.AddHighlight(ctx, dto.AddHighlightInput{BookID: book.ID, Text: "x", Color: "red"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("unknown color should be invalid, got %v", err)
	}

	list, err := h.uc.ListHighlights(ctx, book.ID)
	if err != nil {
		t.Fatalf("list highlights: %v", err)
	}
	if len(list) != 2 || list[0].ID != explained.ID {
		t.Fatalf("highlights should be newest first: %+v", list)
	}
	if err := h.uc.DeleteHighlight(ctx, book.ID, first.ID); err != nil {
		t.Fatalf("delete highlight: %v", err)
	}

	summary, err := h.uc.SaveSummary(ctx, dto.SaveSummaryInput{BookID: book.ID, ChapterName: "An Unexpected Party", Text: "Gandalf arrives."})
	if err != nil {
		t.Fatalf("save summary: %v", err)
	}

	out, err := h.uc.ExportNotes(ctx, book.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.Path != filepath.Join(h.notes, "the-hobbit.md") {
		t.Fatalf("unexpected note path %s", out.Path)
	}
	raw, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	text := string(raw)
	for _, want := range []string{"title: The Hobbit", "Explained: hobbit", "A small person.", "### An Unexpected Party", "<!-- atheneum:highlights:start -->"} {
		if !strings.Contains(text, want) {
			t.Fatalf("note missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "In a hole") {
		t.Fatalf("deleted highlight leaked into note:\n%s", text)
	}

	// hand-written thoughts survive a re-export
	if err := os.WriteFile(out.Path, []byte(text+"\nMy own thought.\n"), 0o644); err != nil {
		t.Fatalf("append note: %v", err)
	}
	if err := h.uc.DeleteSummary(ctx, book.ID, summary.ID); err != nil {
		t.Fatalf("delete summary: %v", err)
	}
	if _, err := h.uc.ExportNotes(ctx, book.ID); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	raw, _ = os.ReadFile(out.Path)
	if !strings.Contains(string(raw), "My own thought.") || strings.Contains(string(raw), "Gandalf arrives.") {
		t.Fatalf("re-export should keep user text and drop the deleted summary:\n%s", raw)
	}
}

func TestPredictionReflectedPartly(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	book, _ := h.uc.AddBook(ctx, dto.AddBookInput{Kind: "ebook", Title: "Rebecca", FilePath: "/b/rebecca.epub"})

	if _, err := h.uc.AddPrediction(ctx, book.ID, "Maxim is hiding something"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("prediction before genre should fail, got %v", err)
	}
	if _, err := h.uc.SetGenre(ctx, book.ID, "fiction"); err != nil {
		t.Fatalf("set genre: %v", err)
	}
	if _, err := h.uc.SetGenre(ctx, book.ID, "nonfiction"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("genre is set once, got %v", err)
	}
	created, err := h.uc.AddPrediction(ctx, book.ID, "Maxim is hiding something")
	if err != nil {
		t.Fatalf("add prediction: %v", err)
	}
	if _, err := h.uc.SetPredictionOutcome(ctx, dto.SetOutcomeInput{BookID: book.ID, CreatedAt: created.CreatedAt, Outcome: "partly"}); err != nil {
		t.Fatalf("set outcome: %v", err)
	}

	list, err := h.uc.ListPredictions(ctx, book.ID)
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one prediction, got %d", len(list))
	}
	got := list[0]
	if got.Outcome != "partly" || got.Text != created.Text || got.Genre != "fiction" || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("prediction changed on reflection: created=%+v got=%+v", created, got)
	}
	if _, err := h.uc.SetPredictionOutcome(ctx, dto.SetOutcomeInput{BookID: book.ID, CreatedAt: created.CreatedAt, Outcome: "yes"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("outcome is set once, got %v", err)
	}
}

func TestConcurrentWritesToOneBookAreSerialized(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	book, _ := h.uc.AddBook(ctx, dto.AddBookInput{Kind: "ebook", Title: "Emma", FilePath: "/b/emma.epub"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = h.uc.AddHighlight(ctx, dto.AddHighlightInput{BookID: book.ID, Text: fmt.Sprintf("line %d", i), Color: "yellow"})
		}(i)
	}
	wg.Wait()

	list, err := h.uc.ListHighlights(ctx, book.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 20 {
		t.Fatalf("lost updates: expected 20 highlights, got %d", len(list))
	}

	db, err := sql.Open("sqlite", h.dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM highlights WHERE book_id = ?`, book.ID).Scan(&count); err != nil {
		t.Fatalf("count highlights: %v", err)
	}
	if count != 20 {
		t.Fatalf("expected 20 rows, got %d", count)
	}
}
