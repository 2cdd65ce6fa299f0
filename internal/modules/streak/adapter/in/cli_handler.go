package in

import (
	"context"

	"atheneum/internal/modules/streak/dto"
	streakin "atheneum/internal/modules/streak/port/in"
)

type CLIHandler struct {
	usecase streakin.Usecase
}

func NewCLIHandler(usecase streakin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Show(ctx context.Context) (dto.StreakOutput, error) {
	return h.usecase.GetStreakData(ctx)
}
