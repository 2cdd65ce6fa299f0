package usecase

import (
	"context"

	"atheneum/internal/modules/focus/dto"
	focusin "atheneum/internal/modules/focus/port/in"
	"atheneum/internal/modules/focus/service"
)

type Interactor struct {
	svc *service.FocusService
}

func NewInteractor(svc *service.FocusService) focusin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.StatusOutput, error) {
	st, err := i.svc.Start(ctx, input.GoalMinutes, input.Ambience)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	return toOutput(st), nil
}

func (i *Interactor) Tick(_ context.Context) dto.StatusOutput {
	return toOutput(i.svc.Tick())
}

func (i *Interactor) Stop(_ context.Context) dto.StatusOutput {
	return toOutput(i.svc.Stop())
}

func toOutput(st service.Status) dto.StatusOutput {
	out := dto.StatusOutput{
		Active:    st.Active,
		Ambience:  string(st.Ambience),
		Goal:      st.Goal,
		Elapsed:   st.Elapsed,
		Remaining: st.Remaining,
		Completed: st.Completed,
	}
	if st.AmbienceErr != nil {
		out.AmbienceError = st.AmbienceErr.Error()
	}
	return out
}
