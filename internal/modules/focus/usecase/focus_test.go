package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"atheneum/internal/modules/focus/domain"
	"atheneum/internal/modules/focus/dto"
	"atheneum/internal/modules/focus/service"
	"atheneum/internal/modules/focus/usecase"
	apperrors "atheneum/internal/platform/errors"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type fakePlayer struct {
	playing domain.Ambience
	plays   int
	stops   int
	err     error
}

func (f *fakePlayer) Play(_ context.Context, a domain.Ambience) error {
	if f.err != nil {
		return f.err
	}
	f.plays++
	f.playing = a
	return nil
}

func (f *fakePlayer) Stop() error {
	f.stops++
	f.playing = ""
	return nil
}

func TestFocusSessionStopsAmbienceOnCompletion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)}
	player := &fakePlayer{}
	uc := usecase.NewInteractor(service.NewFocusService(clk, player, nil))

	out, err := uc.Start(ctx, dto.StartInput{GoalMinutes: 25, Ambience: "forest"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !out.Active || player.playing != domain.AmbienceForest {
		t.Fatalf("expected forest to play: %+v %q", out, player.playing)
	}
	clk.now = clk.now.Add(24 * time.Minute)
	if st := uc.Tick(ctx); st.Remaining != time.Minute || player.playing == "" {
		t.Fatalf("unexpected tick %+v", st)
	}
	clk.now = clk.now.Add(time.Minute)
	st := uc.Tick(ctx)
	if !st.Completed || st.Active || player.playing != "" {
		t.Fatalf("completion should stop ambience: %+v", st)
	}
}

func TestFocusKeepsTimingWhenAmbienceFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	player := &fakePlayer{err: apperrors.ErrNotFound}
	uc := usecase.NewInteractor(service.NewFocusService(clk, player, nil))
	out, err := uc.Start(ctx, dto.StartInput{GoalMinutes: 15, Ambience: "rain"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !out.Active || out.AmbienceError == "" {
		t.Fatalf("expected running timer with ambience error: %+v", out)
	}
	if st := uc.Stop(ctx); st.Active || player.stops != 1 {
		t.Fatalf("stop: %+v stops=%d", st, player.stops)
	}
}

func TestFocusRejectsUnknownAmbience(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewFocusService(&fakeClock{now: time.Now()}, &fakePlayer{}, nil))
	if _, err := uc.Start(context.Background(), dto.StartInput{GoalMinutes: 15, Ambience: "waves"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
