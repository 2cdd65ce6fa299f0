package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"atheneum/internal/modules/assist/domain"
	assistout "atheneum/internal/modules/assist/port/out"
	apperrors "atheneum/internal/platform/errors"
)

// AssistService sends reading-companion prompts to the generation service.
// Nothing is sent without a configured provider, and failed calls leave no
// trace in the library.
type AssistService struct {
	generator    assistout.Generator
	settings     assistout.SettingsProvider
	summaries    assistout.SummaryStore
	explanations assistout.ExplanationStore
	dictionary   assistout.Dictionary
	logger       *slog.Logger

	inflight singleflight.Group
}

func NewAssistService(
	generator assistout.Generator,
	settings assistout.SettingsProvider,
	summaries assistout.SummaryStore,
	explanations assistout.ExplanationStore,
	dictionary assistout.Dictionary,
	logger *slog.Logger,
) *AssistService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AssistService{
		generator:    generator,
		settings:     settings,
		summaries:    summaries,
		explanations: explanations,
		dictionary:   dictionary,
		logger:       logger,
	}
}

func (s *AssistService) Configured() bool {
	return s.settings != nil && s.settings.Configured()
}

// Summarize generates a chapter recap and stores it on the book. Identical
// requests for one chapter that overlap share a single remote call.
func (s *AssistService) Summarize(ctx context.Context, bookID string, req domain.SummaryRequest) (string, bool, error) {
	if strings.TrimSpace(bookID) == "" {
		return "", false, fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	if !s.Configured() {
		return "", false, apperrors.ErrNotConfigured
	}
	prompt := domain.SummaryPrompt(req, domain.ParseStyle(s.settings.SummaryStyle()))
	key := bookID + "\x00" + req.ChapterName
	// The shared call outlives any one caller; each caller still stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (any, error) {
		text, err := s.generate(shared, "summary", prompt)
		if err != nil {
			return "", err
		}
		saved := true
		if err := s.summaries.SaveSummary(shared, bookID, req.ChapterName, text); err != nil {
			s.logger.Warn("save summary failed", "book_id", bookID, "chapter", req.ChapterName, "err", err)
			saved = false
		}
		return summaryResult{text: text, saved: saved}, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", false, res.Err
		}
		out := res.Val.(summaryResult)
		return out.text, out.saved, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

type summaryResult struct {
	text  string
	saved bool
}

func (s *AssistService) Recall(ctx context.Context, req domain.RecallRequest) (string, error) {
	if !s.Configured() {
		return "", apperrors.ErrNotConfigured
	}
	if req.Length != "" && !req.Length.Valid() {
		return "", fmt.Errorf("%w: unknown recall length %q", apperrors.ErrInvalidInput, req.Length)
	}
	return s.generate(ctx, "recall", domain.RecallPrompt(req))
}

func (s *AssistService) Orient(ctx context.Context, req domain.OrientationRequest) (string, error) {
	if !s.Configured() {
		return "", apperrors.ErrNotConfigured
	}
	if strings.TrimSpace(req.Title) == "" {
		return "", fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	return s.generate(ctx, "orientation", domain.OrientationPrompt(req))
}

func (s *AssistService) Explain(ctx context.Context, req domain.ExplainRequest) (string, error) {
	if !s.Configured() {
		return "", apperrors.ErrNotConfigured
	}
	if strings.TrimSpace(req.SelectedText) == "" {
		return "", fmt.Errorf("%w: nothing selected", apperrors.ErrInvalidInput)
	}
	return s.generate(ctx, "explain", domain.ExplainPrompt(req))
}

func (s *AssistService) FollowUp(ctx context.Context, req domain.FollowUpRequest) (string, error) {
	if !s.Configured() {
		return "", apperrors.ErrNotConfigured
	}
	if strings.TrimSpace(req.Question) == "" {
		return "", fmt.Errorf("%w: question is required", apperrors.ErrInvalidInput)
	}
	return s.generate(ctx, "follow-up", domain.FollowUpPrompt(req))
}

// SaveExplanation keeps an explanation as a highlight without a range.
func (s *AssistService) SaveExplanation(ctx context.Context, bookID, text, explanation string) (string, error) {
	if strings.TrimSpace(explanation) == "" {
		return "", fmt.Errorf("%w: explanation is empty", apperrors.ErrInvalidInput)
	}
	return s.explanations.SaveExplanation(ctx, bookID, text, explanation)
}

// Define looks a selected word up in the dictionary. It does not need an AI
// provider.
func (s *AssistService) Define(ctx context.Context, selection string) (domain.Definition, error) {
	word := domain.CleanWord(selection)
	if word == "" || strings.ContainsAny(word, " \t\n") {
		return domain.Definition{}, fmt.Errorf("%w: select a single word to define", apperrors.ErrInvalidInput)
	}
	if s.dictionary == nil {
		return domain.Definition{}, fmt.Errorf("%w: no dictionary available", apperrors.ErrLookupFailed)
	}
	def, err := s.dictionary.Lookup(ctx, word)
	if err != nil {
		s.logger.Debug("dictionary lookup failed", "word", word, "err", err)
		return domain.Definition{}, err
	}
	return def, nil
}

func (s *AssistService) generate(ctx context.Context, kind string, p domain.Prompt) (string, error) {
	text, err := s.generator.Generate(ctx, assistout.Request{Prompt: p.Text, Grounded: p.Grounded})
	if err != nil {
		s.logger.Warn("generation failed", "kind", kind, "err", err)
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", apperrors.ErrGenerationFailed)
	}
	return text, nil
}
