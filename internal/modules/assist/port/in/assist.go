package in

import (
	"context"

	"atheneum/internal/modules/assist/dto"
)

type Usecase interface {
	Configured(ctx context.Context) bool
	Summarize(ctx context.Context, input dto.SummaryInput) (dto.SummaryOutput, error)
	Recall(ctx context.Context, input dto.RecallInput) (dto.TextOutput, error)
	Orient(ctx context.Context, input dto.OrientationInput) (dto.TextOutput, error)
	Explain(ctx context.Context, input dto.ExplainInput) (dto.TextOutput, error)
	FollowUp(ctx context.Context, input dto.FollowUpInput) (dto.TextOutput, error)
	SaveExplanation(ctx context.Context, input dto.SaveExplanationInput) (string, error)
	Define(ctx context.Context, input dto.DefineInput) (dto.DefinitionOutput, error)
}
