package in

import (
	"context"

	"atheneum/internal/modules/streak/dto"
)

type Usecase interface {
	RecordReadingDay(ctx context.Context) (dto.StreakOutput, error)
	GetStreakData(ctx context.Context) (dto.StreakOutput, error)
}
