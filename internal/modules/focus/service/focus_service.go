package service

import (
	"context"
	"log/slog"
	"sync"

	"atheneum/internal/modules/focus/domain"
	focusout "atheneum/internal/modules/focus/port/out"
	"atheneum/internal/platform/clock"
)

type Status struct {
	domain.Status
	AmbienceErr error
}

// FocusService runs at most one focus session; starting again restarts it.
type FocusService struct {
	clock  clock.Clock
	player focusout.AmbiencePlayer
	logger *slog.Logger

	mu    sync.Mutex
	timer domain.Timer
}

func NewFocusService(clk clock.Clock, player focusout.AmbiencePlayer, logger *slog.Logger) *FocusService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FocusService{clock: clk, player: player, logger: logger}
}

// Start begins the countdown. A track that cannot play is reported but does
// not stop the timer.
func (s *FocusService) Start(ctx context.Context, goalMinutes int, ambience string) (Status, error) {
	a, err := domain.ParseAmbience(ambience)
	if err != nil {
		return Status{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.timer.Start(s.clock.Now(), goalMinutes, a)
	if err != nil {
		return Status{}, err
	}
	out := Status{Status: st}
	if a == domain.AmbienceSilence {
		s.stopPlayer()
		return out, nil
	}
	if err := s.player.Play(ctx, a); err != nil {
		s.logger.Warn("ambience unavailable", "ambience", string(a), "err", err)
		out.AmbienceErr = err
	}
	return out, nil
}

// Tick stops the track on the tick that completes the goal.
func (s *FocusService) Tick() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.timer.Tick(s.clock.Now())
	if st.Completed {
		s.stopPlayer()
	}
	return Status{Status: st}
}

func (s *FocusService) Stop() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.timer.Stop(s.clock.Now())
	s.stopPlayer()
	return Status{Status: st}
}

func (s *FocusService) stopPlayer() {
	if err := s.player.Stop(); err != nil {
		s.logger.Warn("ambience did not stop", "err", err)
	}
}
