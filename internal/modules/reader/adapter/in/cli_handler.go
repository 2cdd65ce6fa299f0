package in

import (
	"context"
	"fmt"

	"atheneum/internal/modules/reader/dto"
	readerin "atheneum/internal/modules/reader/port/in"
)

type CLIHandler struct {
	usecase readerin.Usecase
}

func NewCLIHandler(usecase readerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Peek opens a book at its stored position, reconciles the first location
// the renderer reports and returns the passage there.
func (h CLIHandler) Peek(ctx context.Context, bookID string) (dto.LocationOutput, dto.PassageOutput, error) {
	opened, err := h.usecase.Open(ctx, dto.OpenInput{BookID: bookID})
	if err != nil {
		return dto.LocationOutput{}, dto.PassageOutput{}, err
	}
	defer h.usecase.Close(ctx)

	var ev dto.LocationEvent
	select {
	case ev = <-opened.Events:
	case <-ctx.Done():
		return dto.LocationOutput{}, dto.PassageOutput{}, ctx.Err()
	}
	if ev == nil {
		return dto.LocationOutput{}, dto.PassageOutput{}, fmt.Errorf("renderer closed before reporting a location")
	}
	loc, err := h.usecase.Handle(ctx, dto.EventInput{Generation: opened.Generation, Event: ev})
	if err != nil {
		return dto.LocationOutput{}, dto.PassageOutput{}, err
	}
	passage, err := h.usecase.Passage(ctx)
	if err != nil {
		return loc, dto.PassageOutput{}, err
	}
	return loc, passage, nil
}
