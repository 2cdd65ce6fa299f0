package domain

import (
	"fmt"
	"time"

	apperrors "atheneum/internal/platform/errors"
)

type Ambience string

const (
	AmbienceSilence Ambience = "silence"
	AmbienceRain    Ambience = "rain"
	AmbienceCafe    Ambience = "cafe"
	AmbienceForest  Ambience = "forest"
)

// Goals are the suggested session lengths in minutes; zero runs untimed.
var Goals = []int{15, 25, 45, 0}

// MaxGoalMinutes bounds custom goals.
const MaxGoalMinutes = 240

func ParseAmbience(s string) (Ambience, error) {
	switch a := Ambience(s); a {
	case "":
		return AmbienceSilence, nil
	case AmbienceSilence, AmbienceRain, AmbienceCafe, AmbienceForest:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown ambience %q", apperrors.ErrInvalidInput, s)
	}
}

type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterLowpass
	FilterBandpass
)

// Profile shapes white noise into an ambience track.
type Profile struct {
	Filter    FilterKind
	Frequency float64
	Q         float64
	Volume    float64
}

// ProfileFor returns false for silence.
func ProfileFor(a Ambience) (Profile, bool) {
	switch a {
	case AmbienceRain:
		return Profile{Filter: FilterBandpass, Frequency: 800, Q: 0.5, Volume: 0.6}, true
	case AmbienceCafe:
		return Profile{Filter: FilterLowpass, Frequency: 400, Q: 1.0, Volume: 0.35}, true
	case AmbienceForest:
		return Profile{Filter: FilterLowpass, Frequency: 200, Q: 1.5, Volume: 0.25}, true
	default:
		return Profile{}, false
	}
}

type Status struct {
	Active    bool
	Ambience  Ambience
	Goal      time.Duration
	Elapsed   time.Duration
	Remaining time.Duration
	// Completed is set once, on the tick that reaches the goal.
	Completed bool
}

// Timer counts a focus session down from its goal.
type Timer struct {
	active    bool
	goal      time.Duration
	startedAt time.Time
	ambience  Ambience
}

func (t *Timer) Start(now time.Time, goalMinutes int, ambience Ambience) (Status, error) {
	if goalMinutes < 0 || goalMinutes > MaxGoalMinutes {
		return Status{}, fmt.Errorf("%w: goal must be between 0 and %d minutes", apperrors.ErrInvalidInput, MaxGoalMinutes)
	}
	if _, err := ParseAmbience(string(ambience)); err != nil {
		return Status{}, err
	}
	if ambience == "" {
		ambience = AmbienceSilence
	}
	*t = Timer{active: true, goal: time.Duration(goalMinutes) * time.Minute, startedAt: now, ambience: ambience}
	return t.status(now), nil
}

func (t *Timer) Tick(now time.Time) Status {
	if !t.active {
		return Status{}
	}
	st := t.status(now)
	if t.goal > 0 && st.Elapsed >= t.goal {
		t.active = false
		st.Active = false
		st.Completed = true
	}
	return st
}

func (t *Timer) Stop(now time.Time) Status {
	if !t.active {
		return Status{}
	}
	st := t.status(now)
	st.Active = false
	t.active = false
	return st
}

func (t *Timer) Active() bool { return t.active }

func (t *Timer) status(now time.Time) Status {
	elapsed := now.Sub(t.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	st := Status{Active: true, Ambience: t.ambience, Goal: t.goal, Elapsed: elapsed}
	if t.goal > 0 {
		st.Remaining = t.goal - elapsed
		if st.Remaining < 0 {
			st.Remaining = 0
		}
	}
	return st
}
