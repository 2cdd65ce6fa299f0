package out

import (
	"context"

	libraryout "atheneum/internal/modules/library/port/out"
	streakin "atheneum/internal/modules/streak/port/in"
)

type StreakDayAdapter struct {
	streak streakin.Usecase
}

func NewStreakDayAdapter(streak streakin.Usecase) libraryout.ReadingDayRecorder {
	return &StreakDayAdapter{streak: streak}
}

func (a *StreakDayAdapter) RecordReadingDay(ctx context.Context) error {
	_, err := a.streak.RecordReadingDay(ctx)
	return err
}
