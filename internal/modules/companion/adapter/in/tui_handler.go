package in

import (
	"context"

	"atheneum/internal/modules/companion/dto"
	companionin "atheneum/internal/modules/companion/port/in"
)

type TUIHandler struct {
	usecase companionin.Usecase
}

func NewTUIHandler(usecase companionin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Open(ctx context.Context, bookID string) (dto.FlowOutput, error) {
	return h.usecase.Open(ctx, dto.OpenInput{BookID: bookID})
}

func (h TUIHandler) State(ctx context.Context) dto.FlowOutput {
	return h.usecase.State(ctx)
}

func (h TUIHandler) ShowRecall(ctx context.Context) (dto.FlowOutput, error) {
	return h.usecase.ShowRecall(ctx)
}

func (h TUIHandler) LoadRecall(ctx context.Context) (dto.RecallOutput, error) {
	return h.usecase.LoadRecall(ctx)
}

func (h TUIHandler) SelectLength(ctx context.Context, length string) (dto.RecallOutput, error) {
	return h.usecase.SelectLength(ctx, length)
}

func (h TUIHandler) DismissRecall(ctx context.Context) (dto.FlowOutput, error) {
	return h.usecase.DismissRecall(ctx)
}

func (h TUIHandler) ChooseGenre(ctx context.Context, genre string) (dto.FlowOutput, error) {
	return h.usecase.ChooseGenre(ctx, genre)
}

func (h TUIHandler) SubmitPrediction(ctx context.Context, text string) (dto.FlowOutput, error) {
	return h.usecase.SubmitPrediction(ctx, text)
}

func (h TUIHandler) SkipPrediction(ctx context.Context) (dto.FlowOutput, error) {
	return h.usecase.SkipPrediction(ctx)
}

func (h TUIHandler) RequestExit(ctx context.Context) (dto.FlowOutput, error) {
	return h.usecase.RequestExit(ctx)
}

func (h TUIHandler) Reflect(ctx context.Context, outcome string) (dto.FlowOutput, error) {
	return h.usecase.Reflect(ctx, outcome)
}

func (h TUIHandler) SkipReflection(ctx context.Context) (dto.FlowOutput, error) {
	return h.usecase.SkipReflection(ctx)
}
