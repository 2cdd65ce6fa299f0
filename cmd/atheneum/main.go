package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"atheneum/internal/bootstrap"
	assistdto "atheneum/internal/modules/assist/dto"
	"atheneum/internal/platform/config"
	apperrors "atheneum/internal/platform/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globals struct {
	dataDir     string
	externalPDF bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "atheneum",
		Short:         "A terminal reading companion for ebooks, PDFs and paper books",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.dataDir, "data", config.DefaultDataDir(), "data directory")

	root.AddCommand(newTUICmd(g))
	root.AddCommand(newBookCmd(g))
	root.AddCommand(newReadCmd(g))
	root.AddCommand(newHighlightCmd(g))
	root.AddCommand(newSummaryCmd(g))
	root.AddCommand(newNotesCmd(g))
	root.AddCommand(newPredictionCmd(g))
	root.AddCommand(newStreakCmd(g))
	root.AddCommand(newStatsCmd(g))
	root.AddCommand(newAICmd(g))
	root.AddCommand(newSettingsCmd(g))
	root.AddCommand(newSessionCmd(g))
	return root
}

// withApp builds the application for one command and closes it afterwards.
func withApp(g *globals, fn func(app *bootstrap.App) error) error {
	cfg, err := config.New(g.dataDir)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg, bootstrap.Options{ExternalPDF: g.externalPDF})
	if err != nil {
		return err
	}
	runErr := fn(app)
	closeErr := app.Close()
	return errors.Join(runErr, closeErr)
}

func newTUICmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal reader",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(g, bootstrap.RunTUI)
		},
	}
	cmd.Flags().BoolVar(&g.externalPDF, "external-pdf", false, "open PDFs in the system viewer")
	return cmd
}

func newBookCmd(g *globals) *cobra.Command {
	book := &cobra.Command{Use: "book", Short: "Manage the library"}

	var kind, title, author string
	var pages int
	add := &cobra.Command{
		Use:   "add [path]",
		Short: "Add an EPUB, a PDF or a physical book",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else if kind == "" {
				kind = "physical"
			}
			return withApp(g, func(app *bootstrap.App) error {
				out, err := app.LibraryCLI.AddBook(context.Background(), kind, title, author, path, pages)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) id=%s\n", out.Title, out.Kind, out.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&kind, "kind", "", "ebook|pdf|physical (guessed from the file when empty)")
	add.Flags().StringVar(&title, "title", "", "title (defaults to the file name)")
	add.Flags().StringVar(&author, "author", "", "author")
	add.Flags().IntVar(&pages, "pages", 0, "page count of a physical book")

	list := &cobra.Command{
		Use:   "list",
		Short: "List books, most recently read first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				books, err := app.LibraryCLI.ListBooks(context.Background())
				if err != nil {
					return err
				}
				if len(books) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no books")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, b := range books {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\n", b.ID, b.Kind, b.Title, b.Author, b.Percent)
				}
				return w.Flush()
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show a book with its recent sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				b, err := app.LibraryCLI.GetBook(context.Background(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "id: %s\ntitle: %s\nauthor: %s\nkind: %s\ngenre: %s\nprogress: %.1f%%\n", b.ID, b.Title, b.Author, b.Kind, orDash(b.Genre), b.Percent)
				if b.TotalPages > 0 {
					_, _ = fmt.Fprintf(out, "page: %d/%d\n", b.CurrentPage, b.TotalPages)
				}
				if b.FilePath != "" {
					_, _ = fmt.Fprintf(out, "file: %s\n", b.FilePath)
				}
				if !b.LastReadAt.IsZero() {
					_, _ = fmt.Fprintf(out, "last read: %s\n", b.LastReadAt.Format(time.DateTime))
				}
				_, _ = fmt.Fprintf(out, "sessions: %d\n", b.SessionCount)
				for _, s := range b.Sessions {
					_, _ = fmt.Fprintf(out, "  %s  %d pages  %s\n", s.OccurredAt.Format(time.DateTime), s.PagesRead, time.Duration(s.DurationMs)*time.Millisecond)
				}
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <book-id>",
		Short: "Remove a book and its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				if err := app.LibraryCLI.DeleteBook(context.Background(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "removed", args[0])
				return nil
			})
		},
	}

	genre := &cobra.Command{
		Use:   "genre <book-id> <fiction|nonfiction>",
		Short: "Set the genre of a book once",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				b, err := app.LibraryCLI.SetGenre(context.Background(), args[0], args[1])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", b.Title, b.Genre)
				return nil
			})
		},
	}

	var page int
	correct := &cobra.Command{
		Use:   "correct <book-id> --page <n>",
		Short: "Correct the current page of a physical book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				b, err := app.LibraryCLI.CorrectPage(context.Background(), args[0], page)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s now at page %d/%d\n", b.Title, b.CurrentPage, b.TotalPages)
				return nil
			})
		},
	}
	correct.Flags().IntVar(&page, "page", 0, "current page")

	book.AddCommand(add, list, show, rm, genre, correct)
	return book
}

func newReadCmd(g *globals) *cobra.Command {
	read := &cobra.Command{Use: "read", Short: "Record and inspect reading"}

	var page int
	var minutes float64
	logCmd := &cobra.Command{
		Use:   "log <book-id> --page <n> --minutes <m>",
		Short: "Log a session with a physical book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				d := time.Duration(minutes * float64(time.Minute))
				s, err := app.LibraryCLI.LogReading(context.Background(), args[0], page, d)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged %d pages in %s\n", s.PagesRead, time.Duration(s.DurationMs)*time.Millisecond)
				return nil
			})
		},
	}
	logCmd.Flags().IntVar(&page, "page", 0, "page reached")
	logCmd.Flags().Float64Var(&minutes, "minutes", 0, "minutes spent reading")

	showCmd := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Print the passage at the stored position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				loc, passage, err := app.ReaderCLI.Peek(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "%s  %.1f%%\n\n", orDash(loc.ChapterName), loc.Percentage*100)
				for _, p := range passage.Paragraphs {
					_, _ = fmt.Fprintln(out, p)
					_, _ = fmt.Fprintln(out)
				}
				return nil
			})
		},
	}

	read.AddCommand(logCmd, showCmd)
	return read
}

func newHighlightCmd(g *globals) *cobra.Command {
	hl := &cobra.Command{Use: "highlight", Short: "Highlights and bookmarks"}

	var color, note string
	add := &cobra.Command{
		Use:   "add <book-id> <text>",
		Short: "Add a highlight by hand",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				h, err := app.LibraryCLI.AddHighlight(context.Background(), args[0], strings.Join(args[1:], " "), color, note)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "highlight %s (%s)\n", h.ID, h.Color)
				return nil
			})
		},
	}
	add.Flags().StringVar(&color, "color", "yellow", "yellow|green|blue|pink|purple|gray")
	add.Flags().StringVar(&note, "note", "", "note")

	list := &cobra.Command{
		Use:   "list <book-id>",
		Short: "List highlights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				items, err := app.LibraryCLI.ListHighlights(context.Background(), args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, h := range items {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.ID, h.Color, h.CreatedAt.Format(time.DateOnly), oneLine(h.Text))
				}
				return w.Flush()
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <book-id> <highlight-id>",
		Short: "Delete a highlight",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				return app.LibraryCLI.DeleteHighlight(context.Background(), args[0], args[1])
			})
		},
	}

	hl.AddCommand(add, list, rm)
	return hl
}

func newSummaryCmd(g *globals) *cobra.Command {
	summary := &cobra.Command{Use: "summary", Short: "Saved chapter summaries"}

	list := &cobra.Command{
		Use:   "list <book-id>",
		Short: "List summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				items, err := app.LibraryCLI.ListSummaries(context.Background(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, s := range items {
					_, _ = fmt.Fprintf(out, "## %s (%s) %s\n\n%s\n\n", orDash(s.ChapterName), s.ID, s.CreatedAt.Format(time.DateOnly), s.Text)
				}
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <book-id> <summary-id>",
		Short: "Delete a summary",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				return app.LibraryCLI.DeleteSummary(context.Background(), args[0], args[1])
			})
		},
	}

	summary.AddCommand(list, rm)
	return summary
}

func newNotesCmd(g *globals) *cobra.Command {
	notes := &cobra.Command{Use: "notes", Short: "Notes export"}
	notes.AddCommand(&cobra.Command{
		Use:   "export <book-id>",
		Short: "Write highlights, summaries and predictions to a Markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				out, err := app.LibraryCLI.ExportNotes(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Path)
				return nil
			})
		},
	})
	return notes
}

func newPredictionCmd(g *globals) *cobra.Command {
	pred := &cobra.Command{Use: "prediction", Short: "Predictions and their outcomes"}
	pred.AddCommand(&cobra.Command{
		Use:   "list <book-id>",
		Short: "List predictions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				items, err := app.LibraryCLI.ListPredictions(context.Background(), args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, p := range items {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.CreatedAt.Format(time.DateTime), p.Genre, orDash(p.Outcome), oneLine(p.Text))
				}
				return w.Flush()
			})
		},
	})
	return pred
}

func newStreakCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the reading streak",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				s, err := app.StreakCLI.Show(context.Background())
				if err != nil {
					return err
				}
				today := "not yet"
				if s.ReadToday {
					today = "yes"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "current: %d days\nbest: %d days\nread today: %s\nlast: %s\n", s.CurrentStreak, s.MaxStreak, today, orDash(s.LastReadDate))
				return nil
			})
		},
	}
}

func newStatsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show reading totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				s, err := app.LibraryCLI.Stats(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "books: %d\npages: %d\ntime: %s\npace: %.2f pages/min\n",
					s.TotalBooks, s.TotalPages, (time.Duration(s.TotalDurationMs) * time.Millisecond).Round(time.Minute), s.PagesPerMinute)
				return nil
			})
		},
	}
}

func newAICmd(g *globals) *cobra.Command {
	ai := &cobra.Command{Use: "ai", Short: "Ask the reading companion"}

	orient := &cobra.Command{
		Use:   "orient <book-id>",
		Short: "Spoiler-free orientation for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				ctx := context.Background()
				b, err := app.LibraryCLI.GetBook(ctx, args[0])
				if err != nil {
					return err
				}
				text, err := app.AssistCLI.Orient(ctx, b.Title, b.Author)
				return printAI(cmd.OutOrStdout(), text, err)
			})
		},
	}

	var length string
	recall := &cobra.Command{
		Use:   "recall <book-id>",
		Short: "Recap the story so far",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				ctx := context.Background()
				b, err := app.LibraryCLI.GetBook(ctx, args[0])
				if err != nil {
					return err
				}
				text, err := app.AssistCLI.Recall(ctx, assistdto.RecallInput{
					Title:       b.Title,
					Author:      b.Author,
					Progress:    b.Progress,
					StartAnchor: b.Cursor,
					Length:      length,
				})
				return printAI(cmd.OutOrStdout(), text, err)
			})
		},
	}
	recall.Flags().StringVar(&length, "length", "standard", "quick|standard|detailed")

	var bookID, chapter string
	explain := &cobra.Command{
		Use:   "explain <text>",
		Short: "Explain a passage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				ctx := context.Background()
				in := assistdto.ExplainInput{SelectedText: strings.Join(args, " "), ChapterName: chapter}
				if bookID != "" {
					b, err := app.LibraryCLI.GetBook(ctx, bookID)
					if err != nil {
						return err
					}
					in.BookTitle, in.BookAuthor = b.Title, b.Author
				}
				text, err := app.AssistCLI.Explain(ctx, in)
				return printAI(cmd.OutOrStdout(), text, err)
			})
		},
	}
	explain.Flags().StringVar(&bookID, "book", "", "book the passage comes from")
	explain.Flags().StringVar(&chapter, "chapter", "", "chapter name")

	define := &cobra.Command{
		Use:   "define <word>",
		Short: "Look a word up in the dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				def, err := app.AssistCLI.Define(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), def.Markdown)
				return err
			})
		},
	}

	ai.AddCommand(orient, recall, explain, define)
	return ai
}

func newSettingsCmd(g *globals) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Show or change settings"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				s := app.Settings.Settings()
				key := "not set"
				if s.GeminiAPIKey != "" {
					key = "set"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "provider: %s\nmodel: %s\napi key: %s\nbase url: %s\nsummary style: %s\nlog level: %s\nappearance: %s, %d%%, %s\n",
					s.Provider, s.Model, key, orDash(s.BaseURL), s.SummaryStyle, s.LogLevel,
					s.Appearance.Theme, s.Appearance.FontSize, s.Appearance.Flow)
				return nil
			})
		},
	}

	setKey := &cobra.Command{
		Use:   "set-key <api-key>",
		Short: "Save the Gemini API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				if err := app.Settings.SetAPIKey(args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "API key saved")
				return nil
			})
		},
	}

	setStyle := &cobra.Command{
		Use:   "set-style <fiction|non-fiction|technical>",
		Short: "Choose how summaries are written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				return app.Settings.SetSummaryStyle(args[0])
			})
		},
	}

	settings.AddCommand(show, setKey, setStyle)
	return settings
}

func newSessionCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the reading session in progress, if any",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(g, func(app *bootstrap.App) error {
				s, err := app.SessionCLI.GetActive(context.Background())
				if errors.Is(err, apperrors.ErrNoActiveSession) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
					return nil
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "book: %s (%s)\nstarted: %s\nduration: %s\npages: %d\n",
					s.BookTitle, s.BookID, s.StartedAt.Format(time.DateTime), (time.Duration(s.DurationMs) * time.Millisecond).Round(time.Second), s.PagesRead)
				return nil
			})
		},
	}
}

func printAI(w io.Writer, text string, err error) error {
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, strings.TrimSpace(text))
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 80 {
		return string(r[:79]) + "…"
	}
	return s
}
