package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sessionout "atheneum/internal/modules/session/adapter/out"
	"atheneum/internal/modules/session/domain"
	sessiondto "atheneum/internal/modules/session/dto"
	"atheneum/internal/modules/session/service"
	"atheneum/internal/modules/session/usecase"
	apperrors "atheneum/internal/platform/errors"
)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type fakeID struct{}

func (fakeID) New() string { return "sess-1" }

type fakeSink struct {
	sessions []domain.Closed
	err      error
}

func (f *fakeSink) AppendSession(_ context.Context, s domain.Closed) error {
	if f.err != nil {
		return f.err
	}
	f.sessions = append(f.sessions, s)
	return nil
}

var t0 = time.Date(2024, 9, 1, 20, 0, 0, 0, time.Local)

func script(offsets ...time.Duration) *fakeClock {
	values := make([]time.Time, 0, len(offsets))
	for _, o := range offsets {
		values = append(values, t0.Add(o))
	}
	return &fakeClock{values: values}
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()
	clk := script(0, 20*time.Second, 40*time.Second, 70*time.Second)
	sink := &fakeSink{}
	active := sessionout.NewFileActiveSessionStore(filepath.Join(t.TempDir(), "active-session.json"))
	uc := usecase.NewInteractor(service.NewSessionService(clk, fakeID{}, sink, active, nil))
	ctx := context.Background()

	begin, err := uc.Begin(ctx, sessiondto.BeginInput{BookID: "b1", BookTitle: "Emma"})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if begin.SessionID != "sess-1" || !begin.StartedAt.Equal(t0) {
		t.Fatalf("unexpected begin output: %+v", begin)
	}
	if _, err := uc.Begin(ctx, sessiondto.BeginInput{BookID: "b2"}); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("second book should be refused, got %v", err)
	}

	if err := uc.RecordLocation(ctx, sessiondto.LocationInput{BookID: "b1", Index: 2}); err != nil {
		t.Fatalf("record location: %v", err)
	}
	if err := uc.RecordLocation(ctx, sessiondto.LocationInput{BookID: "other", Index: 9}); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("location for another book should be ignored, got %v", err)
	}

	got, err := uc.GetActive(ctx)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if !got.InProcess || got.BookID != "b1" || got.PagesRead != 1 {
		t.Fatalf("unexpected active: %+v", got)
	}

	if err := uc.RecordInteraction(ctx); err != nil {
		t.Fatalf("record interaction: %v", err)
	}
	out, err := uc.End(ctx)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !out.Persisted || out.PagesRead != 1 || out.DurationMs != 70000 {
		t.Fatalf("unexpected end output: %+v", out)
	}
	if len(sink.sessions) != 1 || sink.sessions[0].MaxLocation != 2 {
		t.Fatalf("unexpected persisted sessions: %+v", sink.sessions)
	}
	if _, err := uc.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("marker should be cleared, got %v", err)
	}
	if _, err := uc.End(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("ending twice should report no session, got %v", err)
	}
}

func TestShortSessionIsNotPersisted(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{}
	uc := usecase.NewInteractor(service.NewSessionService(script(0, 5*time.Second), fakeID{}, sink, nil, nil))
	ctx := context.Background()
	if _, err := uc.Begin(ctx, sessiondto.BeginInput{BookID: "b1"}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	out, err := uc.End(ctx)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if out.Persisted || len(sink.sessions) != 0 {
		t.Fatalf("a five second glance should not be stored: %+v", out)
	}
}

func TestPersistFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	sink := &fakeSink{err: apperrors.Storage("put", errors.New("disk full"))}
	uc := usecase.NewInteractor(service.NewSessionService(script(0, time.Minute), fakeID{}, sink, nil, nil))
	ctx := context.Background()
	_, _ = uc.Begin(ctx, sessiondto.BeginInput{BookID: "b1"})
	out, err := uc.End(ctx)
	if err != nil {
		t.Fatalf("end must not fail on storage errors: %v", err)
	}
	if out.Persisted {
		t.Fatalf("failed write reported as persisted")
	}
	if _, err := uc.Begin(ctx, sessiondto.BeginInput{BookID: "b2"}); err != nil {
		t.Fatalf("a new book should open after a failed save: %v", err)
	}
}
