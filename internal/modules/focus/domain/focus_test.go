package domain_test

import (
	"errors"
	"testing"
	"time"

	"atheneum/internal/modules/focus/domain"
	apperrors "atheneum/internal/platform/errors"
)

func TestTimerCountsDownAndCompletesOnce(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)
	var timer domain.Timer
	st, err := timer.Start(start, 15, domain.AmbienceRain)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !st.Active || st.Remaining != 15*time.Minute {
		t.Fatalf("unexpected start status %+v", st)
	}
	st = timer.Tick(start.Add(10 * time.Minute))
	if !st.Active || st.Remaining != 5*time.Minute || st.Completed {
		t.Fatalf("unexpected mid status %+v", st)
	}
	st = timer.Tick(start.Add(15*time.Minute + time.Second))
	if st.Active || !st.Completed || st.Remaining != 0 {
		t.Fatalf("expected completion %+v", st)
	}
	if again := timer.Tick(start.Add(16 * time.Minute)); again.Completed || again.Active {
		t.Fatalf("completion must fire once: %+v", again)
	}
}

func TestUntimedSessionRunsUntilStopped(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)
	var timer domain.Timer
	if _, err := timer.Start(start, 0, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	if st := timer.Tick(start.Add(3 * time.Hour)); !st.Active || st.Ambience != domain.AmbienceSilence {
		t.Fatalf("untimed session should stay active: %+v", st)
	}
	st := timer.Stop(start.Add(3 * time.Hour))
	if st.Active || st.Elapsed != 3*time.Hour || timer.Active() {
		t.Fatalf("unexpected stop status %+v", st)
	}
}

func TestStartRejectsBadInput(t *testing.T) {
	t.Parallel()
	var timer domain.Timer
	if _, err := timer.Start(time.Now(), -5, domain.AmbienceSilence); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid goal, got %v", err)
	}
	if _, err := timer.Start(time.Now(), 25, "ocean"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid ambience, got %v", err)
	}
	if _, ok := domain.ProfileFor(domain.AmbienceSilence); ok {
		t.Fatalf("silence has no noise profile")
	}
}
