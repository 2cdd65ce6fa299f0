package out

import (
	"context"

	"atheneum/internal/modules/assist/domain"
)

// Request is one call to the remote generation service.
type Request struct {
	Prompt   string
	Grounded bool
}

// Generator returns generated text. Non-2xx answers come back as
// *apperrors.ProviderError.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type SettingsProvider interface {
	Configured() bool
	SummaryStyle() string
}

type SummaryStore interface {
	SaveSummary(ctx context.Context, bookID, chapterName, text string) error
}

type ExplanationStore interface {
	SaveExplanation(ctx context.Context, bookID, text, explanation string) (string, error)
}

// Dictionary looks up a single word. Unknown words fail with
// apperrors.ErrNotFound.
type Dictionary interface {
	Lookup(ctx context.Context, word string) (domain.Definition, error)
}
