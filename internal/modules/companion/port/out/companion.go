package out

import (
	"context"
	"time"

	"atheneum/internal/modules/companion/domain"
)

type BookPort interface {
	Facts(ctx context.Context, bookID string) (domain.BookFacts, error)
}

// PredictionStore persists the prompts' answers. AddPrediction returns the
// creation timestamp that later identifies the prediction.
type PredictionStore interface {
	SetGenre(ctx context.Context, bookID, genre string) error
	AddPrediction(ctx context.Context, bookID, text string) (time.Time, error)
	SetOutcome(ctx context.Context, bookID string, createdAt time.Time, outcome string) error
}

// RecallGenerator produces the text of the recall card.
type RecallGenerator interface {
	Configured(ctx context.Context) bool
	Orient(ctx context.Context, title, author string) (string, error)
	Recall(ctx context.Context, rc domain.RecallContext) (string, error)
}

// PositionPort describes where the attached book currently stands.
type PositionPort interface {
	Current(ctx context.Context) (domain.RecallContext, error)
}

type SessionPort interface {
	Begin(ctx context.Context, bookID, title string) error
	End(ctx context.Context) error
}
