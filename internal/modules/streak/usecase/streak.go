package usecase

import (
	"context"

	"atheneum/internal/modules/streak/domain"
	"atheneum/internal/modules/streak/dto"
	streakin "atheneum/internal/modules/streak/port/in"
	"atheneum/internal/modules/streak/service"
)

type Interactor struct {
	svc *service.StreakService
}

func NewInteractor(svc *service.StreakService) streakin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) RecordReadingDay(ctx context.Context) (dto.StreakOutput, error) {
	view, err := i.svc.RecordReadingDay(ctx)
	if err != nil {
		return dto.StreakOutput{}, err
	}
	return toOutput(view), nil
}

func (i *Interactor) GetStreakData(ctx context.Context) (dto.StreakOutput, error) {
	view, err := i.svc.GetStreakData(ctx)
	if err != nil {
		return dto.StreakOutput{}, err
	}
	return toOutput(view), nil
}

func toOutput(v domain.View) dto.StreakOutput {
	return dto.StreakOutput{CurrentStreak: v.CurrentStreak, MaxStreak: v.MaxStreak, ReadToday: v.ReadToday, LastReadDate: v.LastReadDate}
}
