package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "atheneum/internal/platform/errors"
)

type Genre string

const (
	GenreFiction    Genre = "fiction"
	GenreNonfiction Genre = "nonfiction"
)

func (g Genre) Validate() error {
	switch g {
	case GenreFiction, GenreNonfiction:
		return nil
	default:
		return fmt.Errorf("%w: unsupported genre %q", apperrors.ErrInvalidInput, string(g))
	}
}

// PredictionQuestion is what the reader is asked before a session.
func (g Genre) PredictionQuestion() string {
	if g == GenreNonfiction {
		return "What are you hoping to learn in this session?"
	}
	return "What do you think happens next?"
}

// ReflectionQuestion is what the reader is asked on the way out.
func (g Genre) ReflectionQuestion() string {
	if g == GenreNonfiction {
		return "Did you learn what you hoped to?"
	}
	return "Was your prediction right?"
}

type Outcome string

const (
	OutcomeYes    Outcome = "yes"
	OutcomePartly Outcome = "partly"
	OutcomeNo     Outcome = "no"
	OutcomeNotYet Outcome = "noyet"
)

// Outcomes lists the answers a reflection offers for the genre.
func (g Genre) Outcomes() []Outcome {
	if g == GenreNonfiction {
		return []Outcome{OutcomeYes, OutcomePartly, OutcomeNotYet}
	}
	return []Outcome{OutcomeYes, OutcomePartly, OutcomeNo}
}

func (g Genre) Allows(o Outcome) bool {
	for _, candidate := range g.Outcomes() {
		if candidate == o {
			return true
		}
	}
	return false
}

// Prediction is keyed by its creation time within a book.
type Prediction struct {
	Text      string
	Genre     Genre
	Outcome   Outcome
	CreatedAt time.Time
}

func (p Prediction) Reflected() bool {
	return p.Outcome != ""
}

// AddPrediction stores text against the book's genre. Timestamps are kept
// at millisecond precision so they survive the store unchanged.
func (b *Book) AddPrediction(text string, at time.Time) (Prediction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Prediction{}, fmt.Errorf("%w: prediction text is required", apperrors.ErrInvalidInput)
	}
	if b.Genre == "" {
		return Prediction{}, fmt.Errorf("%w: set a genre before predicting", apperrors.ErrInvalidInput)
	}
	at = time.UnixMilli(at.UnixMilli())
	for _, p := range b.Predictions {
		if p.CreatedAt.Equal(at) {
			return Prediction{}, fmt.Errorf("%w: prediction already recorded at %s", apperrors.ErrInvalidInput, at.Format(time.RFC3339Nano))
		}
	}
	p := Prediction{Text: text, Genre: b.Genre, CreatedAt: at}
	b.Predictions = append(b.Predictions, p)
	return p, nil
}

func (b *Book) SetPredictionOutcome(createdAt time.Time, o Outcome) (Prediction, error) {
	for i := range b.Predictions {
		p := &b.Predictions[i]
		if !p.CreatedAt.Equal(createdAt) {
			continue
		}
		if p.Reflected() {
			return Prediction{}, fmt.Errorf("%w: prediction already has outcome %s", apperrors.ErrInvalidInput, p.Outcome)
		}
		if !p.Genre.Allows(o) {
			return Prediction{}, fmt.Errorf("%w: outcome %q does not apply to %s", apperrors.ErrInvalidInput, string(o), p.Genre)
		}
		p.Outcome = o
		return *p, nil
	}
	return Prediction{}, fmt.Errorf("prediction at %s: %w", createdAt.Format(time.RFC3339Nano), apperrors.ErrNotFound)
}
