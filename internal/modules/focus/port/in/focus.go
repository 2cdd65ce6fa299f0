package in

import (
	"context"

	"atheneum/internal/modules/focus/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StatusOutput, error)
	Tick(ctx context.Context) dto.StatusOutput
	Stop(ctx context.Context) dto.StatusOutput
}
