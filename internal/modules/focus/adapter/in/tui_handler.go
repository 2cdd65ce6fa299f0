package in

import (
	"context"

	"atheneum/internal/modules/focus/dto"
	focusin "atheneum/internal/modules/focus/port/in"
)

type TUIHandler struct {
	usecase focusin.Usecase
}

func NewTUIHandler(usecase focusin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Start(ctx context.Context, goalMinutes int, ambience string) (dto.StatusOutput, error) {
	return h.usecase.Start(ctx, dto.StartInput{GoalMinutes: goalMinutes, Ambience: ambience})
}

func (h TUIHandler) Tick(ctx context.Context) dto.StatusOutput {
	return h.usecase.Tick(ctx)
}

func (h TUIHandler) Stop(ctx context.Context) dto.StatusOutput {
	return h.usecase.Stop(ctx)
}
