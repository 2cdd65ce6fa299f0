package dto

import "time"

type OpenInput struct {
	BookID string
}

type FlowOutput struct {
	BookID         string
	State          string
	Classification string
	Orientation    bool
	Length         string
	Genre          string
	NeedsGenre     bool
	Question       string
	Outcomes       []string
	Predicted      bool
	PredictedAt    time.Time
}

type RecallOutput struct {
	Text        string
	Length      string
	Orientation bool
	// Regenerated is false when a length change only updated the pending
	// choice.
	Regenerated bool
}
