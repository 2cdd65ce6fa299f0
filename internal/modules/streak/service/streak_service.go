package service

import (
	"context"
	"sync"

	"atheneum/internal/modules/streak/domain"
	streakout "atheneum/internal/modules/streak/port/out"
	"atheneum/internal/platform/clock"
)

// StreakService guards the ledger with a mutex; it is shared by every book.
type StreakService struct {
	clock clock.Clock
	store streakout.StateStore
	mu    sync.Mutex
}

func NewStreakService(clock clock.Clock, store streakout.StateStore) *StreakService {
	return &StreakService{clock: clock, store: store}
}

func (s *StreakService) RecordReadingDay(ctx context.Context) (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	state, err := s.store.Load(ctx)
	if err != nil {
		return domain.View{}, err
	}
	next := state.Record(now)
	if next != state {
		if err := s.store.Save(ctx, next); err != nil {
			return domain.View{}, err
		}
	}
	return next.View(now), nil
}

func (s *StreakService) GetStreakData(ctx context.Context) (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.store.Load(ctx)
	if err != nil {
		return domain.View{}, err
	}
	return state.View(s.clock.Now()), nil
}
