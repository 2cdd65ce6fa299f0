package in

import (
	"context"

	"atheneum/internal/modules/assist/dto"
	assistin "atheneum/internal/modules/assist/port/in"
)

type TUIHandler struct {
	usecase assistin.Usecase
}

func NewTUIHandler(usecase assistin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Configured(ctx context.Context) bool {
	return h.usecase.Configured(ctx)
}

func (h TUIHandler) Summarize(ctx context.Context, input dto.SummaryInput) (dto.SummaryOutput, error) {
	return h.usecase.Summarize(ctx, input)
}

func (h TUIHandler) Recall(ctx context.Context, input dto.RecallInput) (string, error) {
	out, err := h.usecase.Recall(ctx, input)
	return out.Text, err
}

func (h TUIHandler) Orient(ctx context.Context, title, author string) (string, error) {
	out, err := h.usecase.Orient(ctx, dto.OrientationInput{Title: title, Author: author})
	return out.Text, err
}

func (h TUIHandler) Explain(ctx context.Context, input dto.ExplainInput) (string, error) {
	out, err := h.usecase.Explain(ctx, input)
	return out.Text, err
}

func (h TUIHandler) FollowUp(ctx context.Context, input dto.FollowUpInput) (string, error) {
	out, err := h.usecase.FollowUp(ctx, input)
	return out.Text, err
}

func (h TUIHandler) SaveExplanation(ctx context.Context, bookID, text, explanation string) (string, error) {
	return h.usecase.SaveExplanation(ctx, dto.SaveExplanationInput{BookID: bookID, Text: text, Explanation: explanation})
}

func (h TUIHandler) Define(ctx context.Context, word string) (dto.DefinitionOutput, error) {
	return h.usecase.Define(ctx, dto.DefineInput{Word: word})
}
