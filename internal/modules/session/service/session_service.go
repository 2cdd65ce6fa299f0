package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"atheneum/internal/modules/session/domain"
	sessionout "atheneum/internal/modules/session/port/out"
	"atheneum/internal/platform/clock"
	apperrors "atheneum/internal/platform/errors"
	"atheneum/internal/platform/id"
)

// SessionService owns the tracker of the one book open in this process.
type SessionService struct {
	clock  clock.Clock
	idGen  id.Generator
	sink   sessionout.SessionSink
	active sessionout.ActiveSessionStore
	logger *slog.Logger

	mu      sync.Mutex
	current *domain.ActiveSession
	tracker *domain.Tracker
}

func NewSessionService(clock clock.Clock, idGen id.Generator, sink sessionout.SessionSink, active sessionout.ActiveSessionStore, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SessionService{clock: clock, idGen: idGen, sink: sink, active: active, logger: logger}
}

func (s *SessionService) Begin(ctx context.Context, bookID, bookTitle string) (domain.ActiveSession, error) {
	if strings.TrimSpace(bookID) == "" {
		return domain.ActiveSession{}, fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker != nil {
		return domain.ActiveSession{}, fmt.Errorf("book %s is still open: %w", s.tracker.BookID(), apperrors.ErrActiveSessionExists)
	}
	s.recoverStale(ctx)

	now := s.clock.Now()
	active := domain.ActiveSession{
		SessionID: s.idGen.New(),
		BookID:    bookID,
		BookTitle: bookTitle,
		StartedAt: now,
	}
	s.tracker = domain.NewTracker(bookID, now)
	s.current = &active
	if s.active != nil {
		if err := s.active.SaveActive(ctx, active); err != nil {
			s.logger.Warn("save active session marker failed", "book_id", bookID, "err", err)
		}
	}
	return active, nil
}

func (s *SessionService) RecordInteraction(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return false, apperrors.ErrNoActiveSession
	}
	return s.tracker.RecordInteraction(s.clock.Now()), nil
}

// RecordLocation ignores locations for any book but the open one.
func (s *SessionService) RecordLocation(_ context.Context, bookID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil || s.tracker.BookID() != bookID {
		return apperrors.ErrNoActiveSession
	}
	s.tracker.RecordLocationVisited(index, s.clock.Now())
	return nil
}

// End closes the tracker and persists the session when it clears the noise
// floor. Persistence failures are logged, never returned.
func (s *SessionService) End(ctx context.Context) (domain.Closed, bool, error) {
	s.mu.Lock()
	tracker := s.tracker
	s.tracker = nil
	s.current = nil
	s.mu.Unlock()
	if tracker == nil {
		return domain.Closed{}, false, apperrors.ErrNoActiveSession
	}

	closed, worth := tracker.Close(s.clock.Now())
	persisted := false
	if worth {
		if err := s.sink.AppendSession(ctx, closed); err != nil {
			s.logger.Warn("persist session failed", "book_id", closed.BookID, "pages", closed.PagesRead, "duration_ms", closed.DurationMs, "err", err)
		} else {
			persisted = true
		}
	} else {
		s.logger.Debug("session below noise floor", "book_id", closed.BookID, "duration_ms", closed.DurationMs)
	}
	if s.active != nil {
		if err := s.active.ClearActive(ctx); err != nil {
			s.logger.Warn("clear active session marker failed", "book_id", closed.BookID, "err", err)
		}
	}
	return closed, persisted, nil
}

// Active reports the in-process session, falling back to the marker left
// by an earlier run.
func (s *SessionService) Active(ctx context.Context) (domain.ActiveSession, *domain.Closed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		snapshot := domain.Closed{
			BookID:      s.tracker.BookID(),
			PagesRead:   s.tracker.PagesRead(),
			DurationMs:  s.tracker.DurationMs(),
			MaxLocation: s.tracker.MaxLocation(),
		}
		return *s.current, &snapshot, nil
	}
	if s.active == nil {
		return domain.ActiveSession{}, nil, apperrors.ErrNoActiveSession
	}
	active, err := s.active.LoadActive(ctx)
	if err != nil {
		return domain.ActiveSession{}, nil, err
	}
	return active, nil, nil
}

func (s *SessionService) recoverStale(ctx context.Context) {
	if s.active == nil {
		return
	}
	stale, err := s.active.LoadActive(ctx)
	switch {
	case errors.Is(err, apperrors.ErrNoActiveSession):
	case err != nil:
		s.logger.Warn("read active session marker failed", "err", err)
	default:
		s.logger.Warn("previous session was not closed", "book_id", stale.BookID, "started_at", stale.StartedAt)
	}
}
