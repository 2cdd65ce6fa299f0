package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"atheneum/internal/modules/library/domain"
	libraryout "atheneum/internal/modules/library/port/out"
	"atheneum/internal/platform/markdown"
	"atheneum/internal/platform/slug"
)

const (
	highlightsBlock markdown.Block = "highlights"
	summariesBlock  markdown.Block = "summaries"
)

const notesSchema = 1

type noteMeta struct {
	SchemaVersion   int     `yaml:"schema_version"`
	ID              string  `yaml:"id"`
	Kind            string  `yaml:"kind"`
	Title           string  `yaml:"title"`
	Author          string  `yaml:"author,omitempty"`
	Genre           string  `yaml:"genre,omitempty"`
	ProgressPercent float64 `yaml:"progress_percent"`
	CurrentPage     int     `yaml:"current_page"`
	TotalPages      int     `yaml:"total_pages,omitempty"`
	Sessions        int     `yaml:"sessions"`
	AddedAt         string  `yaml:"added_at"`
	LastReadAt      string  `yaml:"last_read_at,omitempty"`
}

// VaultNotesExporter writes one markdown note per book. Text outside the
// managed blocks is preserved across exports.
type VaultNotesExporter struct {
	notesDir string
}

func NewVaultNotesExporter(notesDir string) libraryout.NotesExporter {
	return &VaultNotesExporter{notesDir: notesDir}
}

func (e *VaultNotesExporter) Export(_ context.Context, book domain.Book) (string, error) {
	notePath := filepath.Join(e.notesDir, slug.Make(book.Title)+".md")
	if err := os.MkdirAll(filepath.Dir(notePath), 0o755); err != nil {
		return "", fmt.Errorf("create notes directory: %w", err)
	}

	body := ""
	if existing, err := os.ReadFile(notePath); err == nil {
		var meta noteMeta
		existingBody, _, splitErr := markdown.SplitFrontmatter(string(existing), &meta)
		if splitErr == nil && meta.ID == book.ID {
			body = existingBody
		} else {
			// another book owns this title
			notePath = filepath.Join(e.notesDir, slug.Make(book.Title)+"-"+shortID(book.ID)+".md")
			if again, err := os.ReadFile(notePath); err == nil {
				if againBody, _, err := markdown.SplitFrontmatter(string(again), &meta); err == nil {
					body = againBody
				}
			}
		}
	}
	if strings.TrimSpace(body) == "" {
		body = "## Highlights\n\n" + highlightsBlock.Empty() + "\n\n## Summaries\n\n" + summariesBlock.Empty() + "\n\n## Thoughts\n"
	}
	body = highlightsBlock.Replace(body, renderHighlights(book.HighlightsNewestFirst()))
	body = summariesBlock.Replace(body, renderSummaries(book.SummariesNewestFirst()))

	rendered, err := markdown.RenderFrontmatter(toFrontmatter(book), body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(notePath, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write notes markdown: %w", err)
	}
	return notePath, nil
}

func toFrontmatter(book domain.Book) noteMeta {
	meta := noteMeta{
		SchemaVersion:   notesSchema,
		ID:              book.ID,
		Kind:            string(book.Kind),
		Title:           book.Title,
		Author:          book.Author,
		Genre:           string(book.Genre),
		ProgressPercent: roundTenth(book.ProgressPercent()),
		CurrentPage:     book.CurrentPage,
		Sessions:        len(book.Sessions),
		AddedAt:         book.AddedAt.Format(time.RFC3339),
	}
	if !book.LastReadAt.IsZero() {
		meta.LastReadAt = book.LastReadAt.Format(time.RFC3339)
	}
	if book.Kind == domain.KindPhysical {
		meta.TotalPages = book.TotalPages
	}
	return meta
}

func renderHighlights(highlights []domain.Highlight) string {
	if len(highlights) == 0 {
		return "_No highlights yet._"
	}
	var b strings.Builder
	for i, h := range highlights {
		if i > 0 {
			b.WriteString("\n")
		}
		label := ""
		switch {
		case h.Color == domain.ColorGray:
			label = "Bookmark: "
		case h.IsExplanation():
			label = "Explained: "
		}
		fmt.Fprintf(&b, "> %s%s\n", label, oneLine(h.Text))
		if h.IsExplanation() {
			fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(h.Note))
		}
		fmt.Fprintf(&b, "\n_%s_\n", h.CreatedAt.Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSummaries(summaries []domain.Summary) string {
	if len(summaries) == 0 {
		return "_No summaries yet._"
	}
	var b strings.Builder
	for i, s := range summaries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s\n\n%s\n", s.ChapterName, strings.TrimSpace(s.Text))
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
