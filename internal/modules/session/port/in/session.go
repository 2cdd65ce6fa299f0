package in

import (
	"context"

	"atheneum/internal/modules/session/dto"
)

type Usecase interface {
	Begin(ctx context.Context, input dto.BeginInput) (dto.BeginOutput, error)
	RecordInteraction(ctx context.Context) error
	RecordLocation(ctx context.Context, input dto.LocationInput) error
	End(ctx context.Context) (dto.EndOutput, error)
	GetActive(ctx context.Context) (dto.ActiveSessionOutput, error)
}
