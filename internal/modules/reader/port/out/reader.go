package out

import (
	"context"

	"atheneum/internal/modules/reader/domain"
)

// Renderer opens one document and reports where the reader is through
// Events. TOC and sections are only valid after Open succeeds.
type Renderer interface {
	Open(ctx context.Context, path string) error
	TOC() []domain.TOCItem
	SectionCount() int
	Section(index int) (string, error)
	GoTo(ctx context.Context, target domain.Target) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	AddAnnotation(r, color string) error
	DeleteAnnotation(r string) error
	Events() <-chan domain.LocationEvent
	Close() error
}

type RendererFactory interface {
	ForKind(kind string) (Renderer, error)
}

type BookResolver interface {
	Resolve(ctx context.Context, bookID string) (domain.BookRef, error)
}

type ProgressPort interface {
	UpdateCursor(ctx context.Context, bookID, cursor string, progress float64, page int) error
	Approximate(ctx context.Context, bookID string, step float64) (float64, error)
}

type HighlightPort interface {
	AddHighlight(ctx context.Context, bookID, r, text, color string) (string, error)
	DeleteHighlight(ctx context.Context, bookID, highlightID string) error
}

type ActivityPort interface {
	RecordLocation(ctx context.Context, bookID string, index int) error
	RecordInteraction(ctx context.Context) error
}

type ExternalLauncher interface {
	Open(ctx context.Context, target string) error
}
