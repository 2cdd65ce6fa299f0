package in

import (
	"context"

	"atheneum/internal/modules/assist/dto"
	assistin "atheneum/internal/modules/assist/port/in"
)

type CLIHandler struct {
	usecase assistin.Usecase
}

func NewCLIHandler(usecase assistin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Orient(ctx context.Context, title, author string) (string, error) {
	out, err := h.usecase.Orient(ctx, dto.OrientationInput{Title: title, Author: author})
	return out.Text, err
}

func (h CLIHandler) Recall(ctx context.Context, input dto.RecallInput) (string, error) {
	out, err := h.usecase.Recall(ctx, input)
	return out.Text, err
}

func (h CLIHandler) Explain(ctx context.Context, input dto.ExplainInput) (string, error) {
	out, err := h.usecase.Explain(ctx, input)
	return out.Text, err
}

func (h CLIHandler) Define(ctx context.Context, word string) (dto.DefinitionOutput, error) {
	return h.usecase.Define(ctx, dto.DefineInput{Word: word})
}
