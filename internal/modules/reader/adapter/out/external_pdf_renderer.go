package out

import (
	"context"
	"fmt"

	"atheneum/internal/modules/reader/domain"
	readerout "atheneum/internal/modules/reader/port/out"
	apperrors "atheneum/internal/platform/errors"
)

// ExternalPDFRenderer shows a PDF in the system viewer. The viewer never
// reports a page, so every open and page turn arrives as a PdfLocation
// without one.
type ExternalPDFRenderer struct {
	launcher readerout.ExternalLauncher
	stream   *eventStream
	path     string
}

func NewExternalPDFRenderer(launcher readerout.ExternalLauncher) *ExternalPDFRenderer {
	return &ExternalPDFRenderer{launcher: launcher, stream: newEventStream()}
}

var _ readerout.Renderer = (*ExternalPDFRenderer)(nil)

func (r *ExternalPDFRenderer) Open(ctx context.Context, path string) error {
	if r.launcher == nil {
		return fmt.Errorf("%w: no external viewer configured", apperrors.ErrRenderer)
	}
	if err := r.launcher.Open(ctx, path); err != nil {
		return err
	}
	r.path = path
	return nil
}

func (r *ExternalPDFRenderer) TOC() []domain.TOCItem { return nil }

func (r *ExternalPDFRenderer) SectionCount() int { return 0 }

func (r *ExternalPDFRenderer) Section(int) (string, error) {
	return "", fmt.Errorf("%w: %s is open in an external viewer", apperrors.ErrRenderer, r.path)
}

// GoTo cannot steer the external viewer. It reports nothing, so restoring a
// position on open leaves the stored progress alone.
func (r *ExternalPDFRenderer) GoTo(context.Context, domain.Target) error { return nil }

func (r *ExternalPDFRenderer) Next(context.Context) error {
	r.stream.emit(domain.PdfLocation{})
	return nil
}

func (r *ExternalPDFRenderer) Prev(context.Context) error { return nil }

func (r *ExternalPDFRenderer) AddAnnotation(string, string) error { return nil }

func (r *ExternalPDFRenderer) DeleteAnnotation(string) error { return nil }

func (r *ExternalPDFRenderer) Events() <-chan domain.LocationEvent {
	return r.stream.events()
}

func (r *ExternalPDFRenderer) Close() error {
	r.stream.close()
	return nil
}
