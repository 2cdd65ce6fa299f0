package out

import (
	"context"

	"atheneum/internal/modules/focus/domain"
)

// AmbiencePlayer loops a background track until stopped. Playing a new
// track replaces the current one.
type AmbiencePlayer interface {
	Play(ctx context.Context, ambience domain.Ambience) error
	Stop() error
}
