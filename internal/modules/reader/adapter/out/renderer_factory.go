package out

import (
	"fmt"

	readerout "atheneum/internal/modules/reader/port/out"
	apperrors "atheneum/internal/platform/errors"
)

// RendererFactory builds a fresh renderer per opened book.
type RendererFactory struct {
	launcher    readerout.ExternalLauncher
	externalPDF bool
}

// NewRendererFactory renders PDFs in the terminal unless externalPDF is set,
// in which case they go to the system viewer.
func NewRendererFactory(launcher readerout.ExternalLauncher, externalPDF bool) readerout.RendererFactory {
	return &RendererFactory{launcher: launcher, externalPDF: externalPDF}
}

func (f *RendererFactory) ForKind(kind string) (readerout.Renderer, error) {
	switch kind {
	case "ebook":
		return NewEPUBRenderer(), nil
	case "pdf":
		if f.externalPDF {
			return NewExternalPDFRenderer(f.launcher), nil
		}
		return NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("%w: %q books have no renderer", apperrors.ErrInvalidInput, kind)
	}
}
