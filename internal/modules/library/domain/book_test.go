package domain_test

import (
	"errors"
	"testing"
	"time"

	"atheneum/internal/modules/library/domain"
	apperrors "atheneum/internal/platform/errors"
)

func physical(total int) domain.Book {
	return domain.Book{ID: "b1", Kind: domain.KindPhysical, Title: "Dune", TotalPages: total}
}

func TestBookValidate(t *testing.T) {
	t.Parallel()
	ebook := domain.Book{ID: "b1", Kind: domain.KindEbook, Title: "Emma", FilePath: "/tmp/emma.epub"}
	if err := ebook.Validate(); err != nil {
		t.Fatalf("ebook should be valid: %v", err)
	}
	noFile := ebook
	noFile.FilePath = ""
	if err := noFile.Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("ebook without file should fail, got %v", err)
	}
	if err := physical(0).Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("physical without pages should fail, got %v", err)
	}
	badKind := ebook
	badKind.Kind = "scroll"
	if err := badKind.Validate(); err == nil {
		t.Fatalf("unknown kind should fail")
	}
}

func TestKindForPath(t *testing.T) {
	t.Parallel()
	cases := map[string]domain.Kind{
		"/books/Emma.EPUB": domain.KindEbook,
		"paper.pdf":        domain.KindPDF,
	}
	for path, want := range cases {
		if got, ok := domain.KindForPath(path); !ok || got != want {
			t.Fatalf("KindForPath(%q) = %q, %v", path, got, ok)
		}
	}
	if _, ok := domain.KindForPath("notes.txt"); ok {
		t.Fatalf("txt should not map to a kind")
	}
}

func TestMoveCursorNeverMovesPageBack(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	b := domain.Book{ID: "b1", Kind: domain.KindEbook, Title: "Emma", FilePath: "x.epub"}
	b.MoveCursor("epubcfi(/6/4)", 0.25, 12, at)
	b.MoveCursor("epubcfi(/6/2)", 0.10, 4, at.Add(time.Minute))
	if b.CurrentPage != 12 {
		t.Fatalf("expected page to stay at 12, got %d", b.CurrentPage)
	}
	if b.Cursor != "epubcfi(/6/2)" || b.Progress != 0.10 {
		t.Fatalf("cursor should follow the latest location, got %q %.2f", b.Cursor, b.Progress)
	}
	if !b.LastReadAt.Equal(at.Add(time.Minute)) {
		t.Fatalf("last read not updated: %v", b.LastReadAt)
	}
	if err := b.CorrectPage(3); err != nil || b.CurrentPage != 3 {
		t.Fatalf("explicit correction should move back: page=%d err=%v", b.CurrentPage, err)
	}
}

func TestAdvanceProgressCapsAtWhole(t *testing.T) {
	t.Parallel()
	b := domain.Book{Progress: 0.995}
	b.AdvanceProgress(0.01, time.Now())
	if b.Progress != 1 {
		t.Fatalf("expected progress capped at 1, got %v", b.Progress)
	}
}

func TestLogPhysical(t *testing.T) {
	t.Parallel()
	b := physical(300)
	b.CurrentPage = 40
	if _, err := b.LogPhysical(40, 1000, time.Now()); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("same page should be rejected, got %v", err)
	}
	s, err := b.LogPhysical(55, 900000, time.Now())
	if err != nil {
		t.Fatalf("log physical: %v", err)
	}
	if s.PagesRead != 15 || b.CurrentPage != 55 || b.Cursor != "55" {
		t.Fatalf("unexpected state: session=%+v page=%d cursor=%q", s, b.CurrentPage, b.Cursor)
	}
	if pct := b.ProgressPercent(); pct < 18.3 || pct > 18.4 {
		t.Fatalf("expected ~18.3%%, got %.2f", pct)
	}
}

func TestAppendSessionRaisesPageForEbooks(t *testing.T) {
	t.Parallel()
	b := domain.Book{ID: "b1", Kind: domain.KindEbook, Title: "Emma", FilePath: "x.epub", CurrentPage: 5}
	if err := b.AppendSession(domain.Session{OccurredAt: time.Now(), PagesRead: 3, DurationMs: 50000, MaxLocation: 9}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if b.CurrentPage != 9 || len(b.Sessions) != 1 {
		t.Fatalf("unexpected book: %+v", b)
	}
	if err := b.AppendSession(domain.Session{PagesRead: -1}); err == nil {
		t.Fatalf("negative pages should fail")
	}
}

func TestSetGenreOnce(t *testing.T) {
	t.Parallel()
	b := physical(100)
	if err := b.SetGenre(domain.GenreFiction); err != nil {
		t.Fatalf("set genre: %v", err)
	}
	if err := b.SetGenre(domain.GenreFiction); err != nil {
		t.Fatalf("repeating the genre should be a no-op: %v", err)
	}
	if err := b.SetGenre(domain.GenreNonfiction); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("changing genre should fail, got %v", err)
	}
}

func TestPredictionOutcomeOnce(t *testing.T) {
	t.Parallel()
	b := physical(100)
	if _, err := b.AddPrediction("the duke dies", time.Now()); err == nil {
		t.Fatalf("prediction without genre should fail")
	}
	_ = b.SetGenre(domain.GenreNonfiction)
	p, err := b.AddPrediction("  learn about sandworms ", time.Now())
	if err != nil {
		t.Fatalf("add prediction: %v", err)
	}
	if p.Text != "learn about sandworms" || p.Genre != domain.GenreNonfiction {
		t.Fatalf("unexpected prediction: %+v", p)
	}
	if _, err := b.SetPredictionOutcome(p.CreatedAt, domain.OutcomeNo); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("fiction outcome on nonfiction should fail, got %v", err)
	}
	if _, err := b.SetPredictionOutcome(p.CreatedAt, domain.OutcomeNotYet); err != nil {
		t.Fatalf("set outcome: %v", err)
	}
	if _, err := b.SetPredictionOutcome(p.CreatedAt, domain.OutcomeYes); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("second outcome should fail, got %v", err)
	}
	if _, err := b.SetPredictionOutcome(time.Unix(1, 0), domain.OutcomeYes); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown prediction should be not found, got %v", err)
	}
}

func TestRemoveHighlightByID(t *testing.T) {
	t.Parallel()
	b := physical(100)
	now := time.Now()
	_ = b.AddHighlight(domain.Highlight{ID: "h1", Text: "a", Color: domain.ColorPurple, Note: "why", CreatedAt: now})
	_ = b.AddHighlight(domain.Highlight{ID: "h2", Text: "b", Color: domain.ColorPurple, Note: "why", CreatedAt: now.Add(time.Second)})
	if _, err := b.RemoveHighlight("h1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(b.Highlights) != 1 || b.Highlights[0].ID != "h2" {
		t.Fatalf("only h1 should be removed even though both lack a range: %+v", b.Highlights)
	}
	if _, err := b.RemoveHighlight("h1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()
	books := []domain.Book{
		{Kind: domain.KindEbook, Sessions: []domain.Session{{PagesRead: 10, DurationMs: 600000}, {PagesRead: 5, DurationMs: 300000}}},
		{Kind: domain.KindPhysical, CurrentPage: 45, Sessions: []domain.Session{{PagesRead: 45, DurationMs: 900000}}},
	}
	stats := domain.ComputeStats(books)
	if stats.TotalBooks != 2 || stats.TotalPages != 60 || stats.TotalDurationMs != 1800000 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if ppm := stats.PagesPerMinute(); ppm != 2 {
		t.Fatalf("expected 2 pages/min, got %v", ppm)
	}
	if (domain.Stats{}).PagesPerMinute() != 0 {
		t.Fatalf("empty stats should report zero speed")
	}
}
