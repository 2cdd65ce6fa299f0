package bootstrap_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"atheneum/internal/bootstrap"
	"atheneum/internal/platform/config"
	apperrors "atheneum/internal/platform/errors"
)

func newApp(t *testing.T, dir string) *bootstrap.App {
	t.Helper()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.SettingsPath = filepath.Join(dir, "settings.yaml")
	app, err := bootstrap.New(cfg, bootstrap.Options{LogWriter: io.Discard})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

func TestCloseEndsSessionLeftOpen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	app := newApp(t, dir)
	book, err := app.LibraryCLI.AddBook(ctx, "physical", "Dune", "Frank Herbert", "", 400)
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := app.CompanionTUI.Open(ctx, book.ID); err != nil {
		t.Fatalf("open screen: %v", err)
	}
	active, err := app.SessionCLI.GetActive(ctx)
	if err != nil || active.BookID != book.ID {
		t.Fatalf("expected an open session: %+v %v", active, err)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := newApp(t, dir)
	defer reopened.Close()
	if _, err := reopened.SessionCLI.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("session marker should be cleared on close, got %v", err)
	}
}
