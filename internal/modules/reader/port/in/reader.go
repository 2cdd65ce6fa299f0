package in

import (
	"context"

	"atheneum/internal/modules/reader/dto"
)

type Usecase interface {
	Open(ctx context.Context, input dto.OpenInput) (dto.OpenOutput, error)
	Handle(ctx context.Context, input dto.EventInput) (dto.LocationOutput, error)
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	GoTo(ctx context.Context, input dto.GoToInput) error
	Location(ctx context.Context) (dto.LocationOutput, error)
	Passage(ctx context.Context) (dto.PassageOutput, error)
	Surrounding(ctx context.Context, paragraph int) (dto.SurroundingOutput, error)
	Highlight(ctx context.Context, input dto.HighlightInput) (dto.HighlightOutput, error)
	RemoveHighlight(ctx context.Context, input dto.RemoveHighlightInput) error
	Context(ctx context.Context) (dto.ContextOutput, error)
	Interact(ctx context.Context) error
	Tap(ctx context.Context) dto.ChromeOutput
	OpenPanel(ctx context.Context, panel string) dto.ChromeOutput
	ClosePanel(ctx context.Context) dto.ChromeOutput
	SetFocus(ctx context.Context, on bool) dto.ChromeOutput
	Close(ctx context.Context) error
}
