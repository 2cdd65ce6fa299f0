package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "atheneum/internal/platform/errors"
)

type Kind string

const (
	KindEbook    Kind = "ebook"
	KindPDF      Kind = "pdf"
	KindPhysical Kind = "physical"
)

const (
	DefaultPhysicalPages = 300
	DefaultProgressStep  = 0.01
	// NoLocation marks a session that never reported a discrete location.
	NoLocation = -1
)

func (k Kind) Validate() error {
	switch k {
	case KindEbook, KindPDF, KindPhysical:
		return nil
	default:
		return fmt.Errorf("%w: unsupported book kind %q", apperrors.ErrInvalidInput, string(k))
	}
}

// KindForPath guesses the kind of a file from its extension.
func KindForPath(path string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(path))) {
	case ".epub":
		return KindEbook, true
	case ".pdf":
		return KindPDF, true
	default:
		return "", false
	}
}

// HasContent reports whether the kind is backed by a file the renderer opens.
func (k Kind) HasContent() bool {
	return k == KindEbook || k == KindPDF
}

type Book struct {
	ID          string
	Kind        Kind
	Title       string
	Author      string
	FilePath    string
	Cursor      string
	CurrentPage int
	TotalPages  int
	Progress    float64
	LastReadAt  time.Time
	AddedAt     time.Time
	Genre       Genre
	Sessions    []Session
	Highlights  []Highlight
	Summaries   []Summary
	Predictions []Prediction
}

func (b Book) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: id is required", apperrors.ErrInvalidInput)
	}
	if err := b.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	if b.Kind.HasContent() && strings.TrimSpace(b.FilePath) == "" {
		return fmt.Errorf("%w: %s books need a file path", apperrors.ErrInvalidInput, b.Kind)
	}
	if b.Kind == KindPhysical && b.TotalPages <= 0 {
		return fmt.Errorf("%w: physical books need a page count", apperrors.ErrInvalidInput)
	}
	if b.Genre != "" {
		if err := b.Genre.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsNew reports a book that was never opened: no sessions and no cursor.
func (b Book) IsNew() bool {
	return len(b.Sessions) == 0 && strings.TrimSpace(b.Cursor) == ""
}

// ProgressPercent is derived from pages for physical books and from the last
// reconciled fraction otherwise.
func (b Book) ProgressPercent() float64 {
	if b.Kind == KindPhysical {
		if b.TotalPages <= 0 {
			return 0
		}
		return clampPercent(float64(b.CurrentPage) / float64(b.TotalPages) * 100)
	}
	return clampPercent(b.Progress * 100)
}

// MoveCursor records a write-through location. The page only ever moves
// forward here; use CorrectPage to go back.
func (b *Book) MoveCursor(cursor string, progress float64, page int, at time.Time) {
	if cursor != "" {
		b.Cursor = cursor
	}
	if progress >= 0 {
		b.Progress = clampFraction(progress)
	}
	if page > b.CurrentPage {
		b.CurrentPage = page
	}
	b.LastReadAt = at
}

// AdvanceProgress bumps the fraction by step, capped at 1.
func (b *Book) AdvanceProgress(step float64, at time.Time) {
	if step <= 0 {
		step = DefaultProgressStep
	}
	b.Progress = clampFraction(b.Progress + step)
	b.LastReadAt = at
}

func (b *Book) AppendSession(s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	b.Sessions = append(b.Sessions, s)
	if b.Kind.HasContent() && s.MaxLocation > b.CurrentPage {
		b.CurrentPage = s.MaxLocation
	}
	b.LastReadAt = s.OccurredAt
	return nil
}

// LogPhysical records a timed physical reading session that ended on newPage.
func (b *Book) LogPhysical(newPage int, durationMs int64, at time.Time) (Session, error) {
	if b.Kind != KindPhysical {
		return Session{}, fmt.Errorf("%w: only physical books log pages by hand", apperrors.ErrInvalidInput)
	}
	if newPage <= b.CurrentPage {
		return Session{}, fmt.Errorf("%w: page %d must be after current page %d", apperrors.ErrInvalidInput, newPage, b.CurrentPage)
	}
	s := Session{
		OccurredAt:  at,
		PagesRead:   newPage - b.CurrentPage,
		DurationMs:  durationMs,
		MaxLocation: NoLocation,
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	b.Sessions = append(b.Sessions, s)
	b.CurrentPage = newPage
	b.Cursor = fmt.Sprintf("%d", newPage)
	b.LastReadAt = at
	return s, nil
}

func (b *Book) CorrectPage(page int) error {
	if page < 0 {
		return fmt.Errorf("%w: page must not be negative", apperrors.ErrInvalidInput)
	}
	if b.Kind == KindPhysical && page > b.TotalPages {
		return fmt.Errorf("%w: page %d is past the last page %d", apperrors.ErrInvalidInput, page, b.TotalPages)
	}
	b.CurrentPage = page
	if b.Kind == KindPhysical {
		b.Cursor = fmt.Sprintf("%d", page)
	}
	return nil
}

// SetGenre is allowed once. Repeating the same genre is a no-op.
func (b *Book) SetGenre(g Genre) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if b.Genre != "" && b.Genre != g {
		return fmt.Errorf("%w: genre already set to %s", apperrors.ErrInvalidInput, b.Genre)
	}
	b.Genre = g
	return nil
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
