// Package domain holds the prompt sequence around a reading session:
// recall on entry, a prediction before reading and a reflection on exit.
package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "atheneum/internal/platform/errors"
)

// LapseThreshold is how long a reader may stay away before the book greets
// them with a recall card.
const LapseThreshold = 3 * 24 * time.Hour

type Classification int

const (
	ClassNone Classification = iota
	ClassNewBook
	ClassLapsed
)

func (c Classification) String() string {
	switch c {
	case ClassNewBook:
		return "new"
	case ClassLapsed:
		return "lapsed"
	default:
		return "none"
	}
}

type State int

const (
	StateIdle State = iota
	StateRecallShown
	StateReading
	StatePredictionShown
	StateReflectionShown
	StateExited
)

func (s State) String() string {
	switch s {
	case StateRecallShown:
		return "recall"
	case StateReading:
		return "reading"
	case StatePredictionShown:
		return "prediction"
	case StateReflectionShown:
		return "reflection"
	case StateExited:
		return "exited"
	default:
		return "idle"
	}
}

type Length string

const (
	LengthQuick    Length = "quick"
	LengthStandard Length = "standard"
	LengthDetailed Length = "detailed"
)

func (l Length) Validate() error {
	switch l {
	case LengthQuick, LengthStandard, LengthDetailed:
		return nil
	}
	return fmt.Errorf("%w: unknown recall length %q", apperrors.ErrInvalidInput, l)
}

const (
	GenreFiction    = "fiction"
	GenreNonfiction = "nonfiction"
)

// BookFacts is what classification needs to know about the opened book.
type BookFacts struct {
	ID           string
	Title        string
	Author       string
	Genre        string
	Cursor       string
	SessionCount int
	LastReadAt   time.Time
}

// Classify decides how the book greets the reader: a book with no sessions
// and no stored position is new, a book untouched for longer than
// LapseThreshold is lapsed.
func Classify(now time.Time, b BookFacts) Classification {
	if b.SessionCount == 0 && b.Cursor == "" {
		return ClassNewBook
	}
	if !b.LastReadAt.IsZero() && now.Sub(b.LastReadAt) > LapseThreshold {
		return ClassLapsed
	}
	return ClassNone
}

// Question is the prediction prompt for a genre.
func Question(genre string) string {
	if genre == GenreFiction {
		return "What do you think happens next?"
	}
	return "What are you hoping to learn in this session?"
}

// Outcomes lists the reflection answers offered for a genre.
func Outcomes(genre string) []string {
	if genre == GenreFiction {
		return []string{"yes", "partly", "no"}
	}
	return []string{"yes", "partly", "noyet"}
}

var ErrTransition = fmt.Errorf("%w: prompt not available now", apperrors.ErrInvalidInput)

// Flow is the prompt state machine of one reading screen. Only a
// prediction made during this screen's lifetime can be reflected on.
type Flow struct {
	state       State
	class       Classification
	orientation bool
	length      Length
	loaded      bool
	genre       string
	predicted   bool
	predictedAt time.Time
}

// NewFlow starts a screen. Automatic prompts need both a reason and a
// configured AI provider.
func NewFlow(class Classification, autoPrompts bool, genre string) *Flow {
	f := &Flow{state: StateReading, class: class, length: LengthStandard, genre: genre}
	if autoPrompts && class != ClassNone {
		f.state = StateRecallShown
		f.orientation = class == ClassNewBook
	}
	return f
}

func (f *Flow) State() State                   { return f.state }
func (f *Flow) Classification() Classification { return f.class }
func (f *Flow) Orientation() bool              { return f.orientation }
func (f *Flow) Length() Length                 { return f.length }
func (f *Flow) Loaded() bool                   { return f.loaded }
func (f *Flow) Genre() string                  { return f.genre }
func (f *Flow) NeedsGenre() bool               { return f.genre == "" }

// PendingReflection returns the timestamp of this screen's prediction.
func (f *Flow) PendingReflection() (time.Time, bool) {
	return f.predictedAt, f.predicted
}

// ShowRecall opens the recall card on request while reading.
func (f *Flow) ShowRecall() error {
	if f.state != StateReading {
		return f.invalid("show recall")
	}
	f.state = StateRecallShown
	f.orientation = false
	f.loaded = false
	return nil
}

func (f *Flow) RecallLoaded() {
	if f.state == StateRecallShown {
		f.loaded = true
	}
}

// SelectLength changes the recall tier. It reports true when content is
// already on screen and must be generated again at the new length.
func (f *Flow) SelectLength(l Length) (bool, error) {
	if err := l.Validate(); err != nil {
		return false, err
	}
	if f.state != StateRecallShown {
		return false, f.invalid("select length")
	}
	f.length = l
	return f.loaded && !f.orientation, nil
}

// DismissRecall closes the recall card and offers a prediction unless one
// is already active.
func (f *Flow) DismissRecall() error {
	if f.state != StateRecallShown {
		return f.invalid("dismiss recall")
	}
	f.loaded = false
	if f.predicted {
		f.state = StateReading
		return nil
	}
	f.state = StatePredictionShown
	return nil
}

// ChooseGenre records the genre asked for on the first prediction prompt.
func (f *Flow) ChooseGenre(genre string) error {
	if f.state != StatePredictionShown {
		return f.invalid("choose genre")
	}
	if genre != GenreFiction && genre != GenreNonfiction {
		return fmt.Errorf("%w: unknown genre %q", apperrors.ErrInvalidInput, genre)
	}
	if f.genre != "" && f.genre != genre {
		return fmt.Errorf("%w: genre is already %s", apperrors.ErrInvalidInput, f.genre)
	}
	f.genre = genre
	return nil
}

// ValidatePrediction checks a prediction can be submitted without changing
// state, so the caller can persist before committing.
func (f *Flow) ValidatePrediction(text string) error {
	if f.state != StatePredictionShown {
		return f.invalid("submit prediction")
	}
	if f.genre == "" {
		return fmt.Errorf("%w: choose a genre first", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: prediction text is required", apperrors.ErrInvalidInput)
	}
	return nil
}

func (f *Flow) SubmitPrediction(text string, at time.Time) error {
	if err := f.ValidatePrediction(text); err != nil {
		return err
	}
	f.predicted = true
	f.predictedAt = at
	f.state = StateReading
	return nil
}

func (f *Flow) SkipPrediction() error {
	if f.state != StatePredictionShown {
		return f.invalid("skip prediction")
	}
	f.state = StateReading
	return nil
}

// RequestExit ends reading. It reports true when a reflection card must be
// answered or skipped before the screen closes.
func (f *Flow) RequestExit() bool {
	if f.state == StateExited {
		return false
	}
	if f.predicted && f.state != StateReflectionShown {
		f.state = StateReflectionShown
		return true
	}
	if f.state == StateReflectionShown {
		return true
	}
	f.state = StateExited
	return false
}

// Reflect validates the outcome for the genre and closes the screen.
func (f *Flow) Reflect(outcome string) (time.Time, error) {
	if f.state != StateReflectionShown {
		return time.Time{}, f.invalid("reflect")
	}
	valid := false
	for _, o := range Outcomes(f.genre) {
		if o == outcome {
			valid = true
		}
	}
	if !valid {
		return time.Time{}, fmt.Errorf("%w: outcome %q does not fit a %s book", apperrors.ErrInvalidInput, outcome, f.genre)
	}
	f.state = StateExited
	return f.predictedAt, nil
}

func (f *Flow) SkipReflection() error {
	if f.state != StateReflectionShown {
		return f.invalid("skip reflection")
	}
	f.state = StateExited
	return nil
}

func (f *Flow) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrTransition, op, f.state)
}
