package in

import (
	"context"

	"atheneum/internal/modules/reader/dto"
	readerin "atheneum/internal/modules/reader/port/in"
)

type TUIHandler struct {
	usecase readerin.Usecase
}

func NewTUIHandler(usecase readerin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Open(ctx context.Context, bookID string) (dto.OpenOutput, error) {
	return h.usecase.Open(ctx, dto.OpenInput{BookID: bookID})
}

func (h TUIHandler) Handle(ctx context.Context, generation uint64, ev dto.LocationEvent) (dto.LocationOutput, error) {
	return h.usecase.Handle(ctx, dto.EventInput{Generation: generation, Event: ev})
}

func (h TUIHandler) Next(ctx context.Context) error {
	return h.usecase.Next(ctx)
}

func (h TUIHandler) Prev(ctx context.Context) error {
	return h.usecase.Prev(ctx)
}

func (h TUIHandler) GoToFraction(ctx context.Context, fraction float64) error {
	return h.usecase.GoTo(ctx, dto.GoToInput{Fraction: fraction})
}

func (h TUIHandler) GoToToken(ctx context.Context, token string) error {
	return h.usecase.GoTo(ctx, dto.GoToInput{Token: token})
}

func (h TUIHandler) Passage(ctx context.Context) (dto.PassageOutput, error) {
	return h.usecase.Passage(ctx)
}

func (h TUIHandler) Surrounding(ctx context.Context, paragraph int) (dto.SurroundingOutput, error) {
	return h.usecase.Surrounding(ctx, paragraph)
}

func (h TUIHandler) Highlight(ctx context.Context, paragraph int, color string) (dto.HighlightOutput, error) {
	return h.usecase.Highlight(ctx, dto.HighlightInput{Paragraph: paragraph, Color: color})
}

func (h TUIHandler) RemoveHighlight(ctx context.Context, highlightID, rng string) error {
	return h.usecase.RemoveHighlight(ctx, dto.RemoveHighlightInput{ID: highlightID, Range: rng})
}

func (h TUIHandler) Context(ctx context.Context) (dto.ContextOutput, error) {
	return h.usecase.Context(ctx)
}

func (h TUIHandler) Interact(ctx context.Context) error {
	return h.usecase.Interact(ctx)
}

func (h TUIHandler) Tap(ctx context.Context) dto.ChromeOutput {
	return h.usecase.Tap(ctx)
}

func (h TUIHandler) TogglePanel(ctx context.Context, panel string) dto.ChromeOutput {
	return h.usecase.OpenPanel(ctx, panel)
}

func (h TUIHandler) ClosePanel(ctx context.Context) dto.ChromeOutput {
	return h.usecase.ClosePanel(ctx)
}

func (h TUIHandler) SetFocus(ctx context.Context, on bool) dto.ChromeOutput {
	return h.usecase.SetFocus(ctx, on)
}

func (h TUIHandler) Close(ctx context.Context) error {
	return h.usecase.Close(ctx)
}
