package dto

import "time"

type BeginInput struct {
	BookID    string
	BookTitle string
}

type BeginOutput struct {
	SessionID string
	BookID    string
	StartedAt time.Time
}

type LocationInput struct {
	BookID string
	Index  int
}

type EndOutput struct {
	BookID     string
	Persisted  bool
	PagesRead  int
	DurationMs int64
}

type ActiveSessionOutput struct {
	SessionID  string
	BookID     string
	BookTitle  string
	StartedAt  time.Time
	DurationMs int64
	PagesRead  int
	InProcess  bool
}
