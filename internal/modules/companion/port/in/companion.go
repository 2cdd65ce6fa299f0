package in

import (
	"context"

	"atheneum/internal/modules/companion/dto"
)

type Usecase interface {
	Open(ctx context.Context, input dto.OpenInput) (dto.FlowOutput, error)
	State(ctx context.Context) dto.FlowOutput
	ShowRecall(ctx context.Context) (dto.FlowOutput, error)
	LoadRecall(ctx context.Context) (dto.RecallOutput, error)
	SelectLength(ctx context.Context, length string) (dto.RecallOutput, error)
	DismissRecall(ctx context.Context) (dto.FlowOutput, error)
	ChooseGenre(ctx context.Context, genre string) (dto.FlowOutput, error)
	SubmitPrediction(ctx context.Context, text string) (dto.FlowOutput, error)
	SkipPrediction(ctx context.Context) (dto.FlowOutput, error)
	RequestExit(ctx context.Context) (dto.FlowOutput, error)
	Reflect(ctx context.Context, outcome string) (dto.FlowOutput, error)
	SkipReflection(ctx context.Context) (dto.FlowOutput, error)
}
