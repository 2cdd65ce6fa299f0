package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"atheneum/internal/modules/companion/domain"
	companionout "atheneum/internal/modules/companion/port/out"
	"atheneum/internal/platform/clock"
	apperrors "atheneum/internal/platform/errors"
)

// Screen is the prompt state of the attached book.
type Screen struct {
	BookID string
	Flow   domain.Flow
}

type Recall struct {
	Text        string
	Length      domain.Length
	Orientation bool
	Regenerated bool
}

// CompanionService drives the prompts of one reading screen at a time.
type CompanionService struct {
	clock       clock.Clock
	books       companionout.BookPort
	predictions companionout.PredictionStore
	recall      companionout.RecallGenerator
	position    companionout.PositionPort
	sessions    companionout.SessionPort
	logger      *slog.Logger

	mu   sync.Mutex
	book domain.BookFacts
	flow *domain.Flow
}

func NewCompanionService(
	clk clock.Clock,
	books companionout.BookPort,
	predictions companionout.PredictionStore,
	recall companionout.RecallGenerator,
	position companionout.PositionPort,
	sessions companionout.SessionPort,
	logger *slog.Logger,
) *CompanionService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CompanionService{
		clock:       clk,
		books:       books,
		predictions: predictions,
		recall:      recall,
		position:    position,
		sessions:    sessions,
		logger:      logger,
	}
}

// Open classifies the book and starts its reading session. A session left
// over from an earlier screen is closed first.
func (s *CompanionService) Open(ctx context.Context, bookID string) (Screen, error) {
	facts, err := s.books.Facts(ctx, bookID)
	if err != nil {
		return Screen{}, err
	}
	class := domain.Classify(s.clock.Now(), facts)
	auto := s.recall.Configured(ctx)

	err = s.sessions.Begin(ctx, facts.ID, facts.Title)
	if errors.Is(err, apperrors.ErrActiveSessionExists) {
		s.logger.Warn("closing stale session", "book_id", facts.ID)
		if endErr := s.sessions.End(ctx); endErr != nil {
			return Screen{}, endErr
		}
		err = s.sessions.Begin(ctx, facts.ID, facts.Title)
	}
	if err != nil {
		return Screen{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.book = facts
	s.flow = domain.NewFlow(class, auto, facts.Genre)
	s.logger.Debug("screen opened", "book_id", facts.ID, "class", class.String(), "auto", auto)
	return s.screenLocked(), nil
}

func (s *CompanionService) State() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screenLocked()
}

func (s *CompanionService) ShowRecall() (Screen, error) {
	return s.transition(func(f *domain.Flow) error { return f.ShowRecall() })
}

// LoadRecall generates the card for the current tier. Orientation cards are
// written for books opened for the first time.
func (s *CompanionService) LoadRecall(ctx context.Context) (Recall, error) {
	s.mu.Lock()
	if err := s.attachedLocked(); err != nil {
		s.mu.Unlock()
		return Recall{}, err
	}
	if s.flow.State() != domain.StateRecallShown {
		err := fmt.Errorf("%w: recall card is not shown", domain.ErrTransition)
		s.mu.Unlock()
		return Recall{}, err
	}
	book := s.book
	orientation := s.flow.Orientation()
	length := s.flow.Length()
	s.mu.Unlock()

	text, err := s.generate(ctx, book, orientation, length)
	if err != nil {
		return Recall{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow == nil || s.book.ID != book.ID {
		return Recall{}, fmt.Errorf("%w: book changed while generating", domain.ErrTransition)
	}
	s.flow.RecallLoaded()
	return Recall{Text: text, Length: length, Orientation: orientation, Regenerated: true}, nil
}

// SelectLength regenerates only when a card is already on screen.
func (s *CompanionService) SelectLength(ctx context.Context, length domain.Length) (Recall, error) {
	s.mu.Lock()
	if err := s.attachedLocked(); err != nil {
		s.mu.Unlock()
		return Recall{}, err
	}
	regenerate, err := s.flow.SelectLength(length)
	orientation := s.flow.Orientation()
	s.mu.Unlock()
	if err != nil {
		return Recall{}, err
	}
	if !regenerate {
		return Recall{Length: length, Orientation: orientation}, nil
	}
	return s.LoadRecall(ctx)
}

func (s *CompanionService) DismissRecall() (Screen, error) {
	return s.transition(func(f *domain.Flow) error { return f.DismissRecall() })
}

// ChooseGenre persists the genre once, then lets the prediction continue.
func (s *CompanionService) ChooseGenre(ctx context.Context, genre string) (Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.attachedLocked(); err != nil {
		return Screen{}, err
	}
	had := !s.flow.NeedsGenre()
	if err := s.flow.ChooseGenre(genre); err != nil {
		return Screen{}, err
	}
	if !had {
		if err := s.predictions.SetGenre(ctx, s.book.ID, genre); err != nil {
			return Screen{}, err
		}
		s.book.Genre = genre
	}
	return s.screenLocked(), nil
}

func (s *CompanionService) SubmitPrediction(ctx context.Context, text string) (Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.attachedLocked(); err != nil {
		return Screen{}, err
	}
	text = strings.TrimSpace(text)
	if err := s.flow.ValidatePrediction(text); err != nil {
		return Screen{}, err
	}
	at, err := s.predictions.AddPrediction(ctx, s.book.ID, text)
	if err != nil {
		return Screen{}, err
	}
	if err := s.flow.SubmitPrediction(text, at); err != nil {
		return Screen{}, err
	}
	return s.screenLocked(), nil
}

func (s *CompanionService) SkipPrediction() (Screen, error) {
	return s.transition(func(f *domain.Flow) error { return f.SkipPrediction() })
}

// RequestExit persists the session before any reflection is offered.
func (s *CompanionService) RequestExit(ctx context.Context) (Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.attachedLocked(); err != nil {
		return Screen{}, err
	}
	if s.flow.State() != domain.StateReflectionShown {
		if err := s.sessions.End(ctx); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
			s.logger.Warn("session could not be closed", "book_id", s.book.ID, "err", err)
		}
	}
	s.flow.RequestExit()
	return s.screenLocked(), nil
}

func (s *CompanionService) Reflect(ctx context.Context, outcome string) (Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.attachedLocked(); err != nil {
		return Screen{}, err
	}
	at, ok := s.flow.PendingReflection()
	if !ok || s.flow.State() != domain.StateReflectionShown {
		return Screen{}, fmt.Errorf("%w: no prediction to reflect on", domain.ErrTransition)
	}
	trial := *s.flow
	if _, err := trial.Reflect(outcome); err != nil {
		return Screen{}, err
	}
	if err := s.predictions.SetOutcome(ctx, s.book.ID, at, outcome); err != nil {
		return Screen{}, err
	}
	*s.flow = trial
	return s.screenLocked(), nil
}

func (s *CompanionService) SkipReflection() (Screen, error) {
	return s.transition(func(f *domain.Flow) error { return f.SkipReflection() })
}

func (s *CompanionService) generate(ctx context.Context, book domain.BookFacts, orientation bool, length domain.Length) (string, error) {
	if !s.recall.Configured(ctx) {
		return "", apperrors.ErrNotConfigured
	}
	if orientation {
		return s.recall.Orient(ctx, book.Title, book.Author)
	}
	rc, err := s.position.Current(ctx)
	if err != nil {
		s.logger.Debug("recall without reading position", "book_id", book.ID, "err", err)
		rc = domain.RecallContext{}
	}
	if rc.Title == "" {
		rc.Title = book.Title
	}
	if rc.Author == "" {
		rc.Author = book.Author
	}
	rc.Length = length
	return s.recall.Recall(ctx, rc)
}

func (s *CompanionService) transition(step func(*domain.Flow) error) (Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.attachedLocked(); err != nil {
		return Screen{}, err
	}
	if err := step(s.flow); err != nil {
		return Screen{}, err
	}
	return s.screenLocked(), nil
}

func (s *CompanionService) attachedLocked() error {
	if s.flow == nil {
		return fmt.Errorf("%w: no book is open", domain.ErrTransition)
	}
	return nil
}

func (s *CompanionService) screenLocked() Screen {
	if s.flow == nil {
		return Screen{}
	}
	return Screen{BookID: s.book.ID, Flow: *s.flow}
}
