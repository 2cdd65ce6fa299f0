package out

import (
	"context"

	"atheneum/internal/modules/streak/domain"
)

// StateStore returns the zero State when nothing has been saved yet.
type StateStore interface {
	Load(ctx context.Context) (domain.State, error)
	Save(ctx context.Context, state domain.State) error
}
