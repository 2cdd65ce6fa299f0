package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "atheneum/internal/platform/errors"
)

type Color string

const (
	ColorYellow Color = "yellow"
	ColorPurple Color = "purple"
	ColorGray   Color = "gray"
)

func (c Color) Validate() error {
	switch c {
	case ColorYellow, ColorPurple, ColorGray:
		return nil
	default:
		return fmt.Errorf("%w: unsupported highlight color %q", apperrors.ErrInvalidInput, string(c))
	}
}

// Highlight is a marked passage. A purple highlight with a note is a saved
// explanation, a gray one is a bookmark. Range is empty when the passage
// cannot be located in the content.
type Highlight struct {
	ID        string
	Range     string
	Text      string
	Color     Color
	Note      string
	CreatedAt time.Time
}

func (h Highlight) IsExplanation() bool {
	return strings.TrimSpace(h.Note) != ""
}

type Summary struct {
	ID          string
	ChapterName string
	Text        string
	CreatedAt   time.Time
}

func (b *Book) AddHighlight(h Highlight) error {
	if strings.TrimSpace(h.ID) == "" {
		return fmt.Errorf("%w: highlight id is required", apperrors.ErrInvalidInput)
	}
	if err := h.Color.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(h.Text) == "" && h.Color != ColorGray {
		return fmt.Errorf("%w: highlight text is required", apperrors.ErrInvalidInput)
	}
	b.Highlights = append(b.Highlights, h)
	return nil
}

func (b *Book) RemoveHighlight(id string) (Highlight, error) {
	for i, h := range b.Highlights {
		if h.ID == id {
			b.Highlights = append(b.Highlights[:i:i], b.Highlights[i+1:]...)
			return h, nil
		}
	}
	return Highlight{}, fmt.Errorf("highlight %s: %w", id, apperrors.ErrNotFound)
}

// HighlightsNewestFirst returns a sorted copy.
func (b Book) HighlightsNewestFirst() []Highlight {
	out := append([]Highlight(nil), b.Highlights...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (b *Book) AddSummary(s Summary) error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: summary id is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(s.Text) == "" {
		return fmt.Errorf("%w: summary text is required", apperrors.ErrInvalidInput)
	}
	b.Summaries = append(b.Summaries, s)
	return nil
}

func (b *Book) RemoveSummary(id string) error {
	for i, s := range b.Summaries {
		if s.ID == id {
			b.Summaries = append(b.Summaries[:i:i], b.Summaries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("summary %s: %w", id, apperrors.ErrNotFound)
}

func (b Book) SummariesNewestFirst() []Summary {
	out := append([]Summary(nil), b.Summaries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
