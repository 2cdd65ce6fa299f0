package dto

import "time"

type StartInput struct {
	GoalMinutes int
	Ambience    string
}

type StatusOutput struct {
	Active    bool
	Ambience  string
	Goal      time.Duration
	Elapsed   time.Duration
	Remaining time.Duration
	Completed bool
	// AmbienceError is set when the timer runs but the track could not play.
	AmbienceError string
}
