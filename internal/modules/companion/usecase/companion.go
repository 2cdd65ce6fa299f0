package usecase

import (
	"context"

	"atheneum/internal/modules/companion/domain"
	"atheneum/internal/modules/companion/dto"
	companionin "atheneum/internal/modules/companion/port/in"
	"atheneum/internal/modules/companion/service"
)

type Interactor struct {
	svc *service.CompanionService
}

func NewInteractor(svc *service.CompanionService) companionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Open(ctx context.Context, input dto.OpenInput) (dto.FlowOutput, error) {
	return mapScreen(i.svc.Open(ctx, input.BookID))
}

func (i *Interactor) State(_ context.Context) dto.FlowOutput {
	out, _ := mapScreen(i.svc.State(), nil)
	return out
}

func (i *Interactor) ShowRecall(_ context.Context) (dto.FlowOutput, error) {
	return mapScreen(i.svc.ShowRecall())
}

func (i *Interactor) LoadRecall(ctx context.Context) (dto.RecallOutput, error) {
	return mapRecall(i.svc.LoadRecall(ctx))
}

func (i *Interactor) SelectLength(ctx context.Context, length string) (dto.RecallOutput, error) {
	return mapRecall(i.svc.SelectLength(ctx, domain.Length(length)))
}

func (i *Interactor) DismissRecall(_ context.Context) (dto.FlowOutput, error) {
	return mapScreen(i.svc.DismissRecall())
}

func (i *Interactor) ChooseGenre(ctx context.Context, genre string) (dto.FlowOutput, error) {
	return mapScreen(i.svc.ChooseGenre(ctx, genre))
}

func (i *Interactor) SubmitPrediction(ctx context.Context, text string) (dto.FlowOutput, error) {
	return mapScreen(i.svc.SubmitPrediction(ctx, text))
}

func (i *Interactor) SkipPrediction(_ context.Context) (dto.FlowOutput, error) {
	return mapScreen(i.svc.SkipPrediction())
}

func (i *Interactor) RequestExit(ctx context.Context) (dto.FlowOutput, error) {
	return mapScreen(i.svc.RequestExit(ctx))
}

func (i *Interactor) Reflect(ctx context.Context, outcome string) (dto.FlowOutput, error) {
	return mapScreen(i.svc.Reflect(ctx, outcome))
}

func (i *Interactor) SkipReflection(_ context.Context) (dto.FlowOutput, error) {
	return mapScreen(i.svc.SkipReflection())
}

func mapScreen(s service.Screen, err error) (dto.FlowOutput, error) {
	if err != nil {
		return dto.FlowOutput{}, err
	}
	f := s.Flow
	at, predicted := f.PendingReflection()
	out := dto.FlowOutput{
		BookID:         s.BookID,
		State:          f.State().String(),
		Classification: f.Classification().String(),
		Orientation:    f.Orientation(),
		Length:         string(f.Length()),
		Genre:          f.Genre(),
		NeedsGenre:     f.NeedsGenre(),
		Predicted:      predicted,
		PredictedAt:    at,
	}
	if f.Genre() != "" {
		out.Question = domain.Question(f.Genre())
		out.Outcomes = domain.Outcomes(f.Genre())
	}
	return out, nil
}

func mapRecall(r service.Recall, err error) (dto.RecallOutput, error) {
	if err != nil {
		return dto.RecallOutput{}, err
	}
	return dto.RecallOutput{Text: r.Text, Length: string(r.Length), Orientation: r.Orientation, Regenerated: r.Regenerated}, nil
}
