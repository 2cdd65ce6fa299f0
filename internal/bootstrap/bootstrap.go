package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	assistinadapter "atheneum/internal/modules/assist/adapter/in"
	assistoutadapter "atheneum/internal/modules/assist/adapter/out"
	assistdomain "atheneum/internal/modules/assist/domain"
	assistservice "atheneum/internal/modules/assist/service"
	assistusecase "atheneum/internal/modules/assist/usecase"
	companioninadapter "atheneum/internal/modules/companion/adapter/in"
	companionoutadapter "atheneum/internal/modules/companion/adapter/out"
	companionservice "atheneum/internal/modules/companion/service"
	companionusecase "atheneum/internal/modules/companion/usecase"
	focusinadapter "atheneum/internal/modules/focus/adapter/in"
	focusoutadapter "atheneum/internal/modules/focus/adapter/out"
	focusservice "atheneum/internal/modules/focus/service"
	focususecase "atheneum/internal/modules/focus/usecase"
	libraryinadapter "atheneum/internal/modules/library/adapter/in"
	libraryoutadapter "atheneum/internal/modules/library/adapter/out"
	libraryservice "atheneum/internal/modules/library/service"
	libraryusecase "atheneum/internal/modules/library/usecase"
	readerinadapter "atheneum/internal/modules/reader/adapter/in"
	readeroutadapter "atheneum/internal/modules/reader/adapter/out"
	readerservice "atheneum/internal/modules/reader/service"
	readerusecase "atheneum/internal/modules/reader/usecase"
	sessioninadapter "atheneum/internal/modules/session/adapter/in"
	sessionoutadapter "atheneum/internal/modules/session/adapter/out"
	sessionin "atheneum/internal/modules/session/port/in"
	sessionservice "atheneum/internal/modules/session/service"
	sessionusecase "atheneum/internal/modules/session/usecase"
	streakinadapter "atheneum/internal/modules/streak/adapter/in"
	streakoutadapter "atheneum/internal/modules/streak/adapter/out"
	streakservice "atheneum/internal/modules/streak/service"
	streakusecase "atheneum/internal/modules/streak/usecase"
	"atheneum/internal/platform/clock"
	"atheneum/internal/platform/config"
	apperrors "atheneum/internal/platform/errors"
	"atheneum/internal/platform/id"
	"atheneum/internal/platform/logging"
	"atheneum/internal/platform/writequeue"
	uiapp "atheneum/internal/ui/app"
	readerview "atheneum/internal/ui/views/reader"
)

// Options are the per-process switches the command line may set.
type Options struct {
	// ExternalPDF opens PDFs in the system viewer instead of rendering text.
	ExternalPDF bool
	// LogWriter overrides the log file, mostly for tests.
	LogWriter io.Writer
}

type App struct {
	Settings *config.FileSettingsProvider
	Logger   *slog.Logger

	LibraryCLI   libraryinadapter.CLIHandler
	SessionCLI   sessioninadapter.CLIHandler
	StreakCLI    streakinadapter.CLIHandler
	ReaderCLI    readerinadapter.CLIHandler
	ReaderTUI    readerinadapter.TUIHandler
	AssistCLI    assistinadapter.CLIHandler
	AssistTUI    assistinadapter.TUIHandler
	CompanionTUI companioninadapter.TUIHandler
	FocusTUI     focusinadapter.TUIHandler

	closers []func() error
}

func New(cfg config.Config, opts Options) (*App, error) {
	settings, err := config.NewFileSettingsProvider(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	app := &App{Settings: settings}
	logOut := opts.LogWriter
	if logOut == nil {
		f, err := logging.OpenFile(cfg.LogPath)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		app.closers = append(app.closers, f.Close)
		logOut = f
	}
	logger := logging.New(settings.Settings().LogLevel, logOut)
	app.Logger = logger

	clk := clock.SystemClock{}
	ids := id.UUID{}

	streakUC := streakusecase.NewInteractor(streakservice.NewStreakService(
		clk,
		streakoutadapter.NewFileStateStore(cfg.StreakPath),
	))

	bookStore, err := libraryoutadapter.NewSQLiteBookStore(cfg.DBPath)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("open library: %w", err)
	}
	libraryQueue := writequeue.New(logger.With("queue", "library"))
	libraryUC := libraryusecase.NewInteractor(libraryservice.NewBookService(
		clk,
		ids,
		bookStore,
		libraryoutadapter.NewVaultNotesExporter(cfg.NotesDir),
		libraryoutadapter.NewStreakDayAdapter(streakUC),
		libraryQueue,
		logger.With("module", "library"),
	))

	sessionUC := sessionusecase.NewInteractor(sessionservice.NewSessionService(
		clk,
		ids,
		sessionoutadapter.NewLibrarySessionSink(libraryUC),
		sessionoutadapter.NewFileActiveSessionStore(cfg.ActivePath),
		logger.With("module", "session"),
	))

	readerBooks := readeroutadapter.NewLibraryBookAdapter(libraryUC)
	readerQueue := writequeue.New(logger.With("queue", "reader"))
	readerUC := readerusecase.NewInteractor(readerservice.NewReaderService(
		readerBooks,
		readeroutadapter.NewRendererFactory(readeroutadapter.NewSystemLauncher(), opts.ExternalPDF),
		readeroutadapter.NewLibraryProgressAdapter(libraryUC),
		readerBooks,
		readeroutadapter.NewSessionActivityAdapter(sessionUC),
		readerQueue,
		logger.With("module", "reader"),
	))

	notes := assistoutadapter.NewLibraryNotesAdapter(libraryUC)
	assistUC := assistusecase.NewInteractor(assistservice.NewAssistService(
		assistoutadapter.NewConfiguredGenerator(settings, nil),
		settings,
		notes,
		notes,
		assistoutadapter.NewDictionaryClient("", nil),
		logger.With("module", "assist"),
	))

	companionBooks := companionoutadapter.NewLibraryBookAdapter(libraryUC)
	companionUC := companionusecase.NewInteractor(companionservice.NewCompanionService(
		clk,
		companionBooks,
		companionBooks,
		companionoutadapter.NewAssistRecallAdapter(assistUC),
		companionoutadapter.NewReaderPositionAdapter(readerUC),
		companionoutadapter.NewSessionAdapter(sessionUC),
		logger.With("module", "companion"),
	))

	player := focusoutadapter.NewNoisePlayer(cfg.CacheDir, logger.With("module", "focus"))
	focusUC := focususecase.NewInteractor(focusservice.NewFocusService(clk, player, logger.With("module", "focus")))

	app.LibraryCLI = libraryinadapter.NewCLIHandler(libraryUC)
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.StreakCLI = streakinadapter.NewCLIHandler(streakUC)
	app.ReaderCLI = readerinadapter.NewCLIHandler(readerUC)
	app.ReaderTUI = readerinadapter.NewTUIHandler(readerUC)
	app.AssistCLI = assistinadapter.NewCLIHandler(assistUC)
	app.AssistTUI = assistinadapter.NewTUIHandler(assistUC)
	app.CompanionTUI = companioninadapter.NewTUIHandler(companionUC)
	app.FocusTUI = focusinadapter.NewTUIHandler(focusUC)

	// Closed last to first: the player and renderer go before the queues
	// drain, a session still open is persisted while the library queue
	// runs, and the store closes once nothing can write to it.
	app.closers = append(app.closers,
		bookStore.Close,
		func() error { libraryQueue.Close(); return nil },
		func() error { return endOpenSession(sessionUC, logger) },
		func() error { readerQueue.Close(); return nil },
		func() error { return app.ReaderTUI.Close(context.Background()) },
		player.Stop,
	)
	return app, nil
}

// Close releases everything New opened. It is safe to call more than once.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// endOpenSession persists the session of a screen that was never left,
// such as one interrupted with ctrl+c.
func endOpenSession(sessions sessionin.Usecase, logger *slog.Logger) error {
	out, err := sessions.End(context.Background())
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("open session closed on shutdown", "book_id", out.BookID, "persisted", out.Persisted, "duration_ms", out.DurationMs)
	return nil
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(uiapp.Ports{
		Library:  app.LibraryCLI,
		Streak:   app.StreakCLI,
		Settings: app.Settings,
		Reading: readerview.Ports{
			Reader:     app.ReaderTUI,
			Companion:  app.CompanionTUI,
			Assist:     app.AssistTUI,
			Focus:      app.FocusTUI,
			Appearance: app.Settings,
			Message:    assistdomain.UserMessage,
		},
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
