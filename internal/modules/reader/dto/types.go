package dto

import "atheneum/internal/modules/reader/domain"

// LocationEvent is re-exported so inbound adapters can forward renderer
// events without reaching into the domain package.
type LocationEvent = domain.LocationEvent

type OpenInput struct {
	BookID string
}

type TOCEntry struct {
	Label   string
	Token   string
	Section int
	Depth   int
}

type OpenOutput struct {
	Generation uint64
	BookID     string
	Kind       string
	Title      string
	Author     string
	TOC        []TOCEntry
	Sections   int
	Events     <-chan LocationEvent
}

type EventInput struct {
	Generation uint64
	Event      LocationEvent
}

type LocationOutput struct {
	BookID      string
	Token       string
	Percentage  float64
	Page        int
	Total       int
	Section     int
	ChapterName string
	Degraded    bool
	Stale       bool
}

type GoToInput struct {
	Token    string
	Fraction float64
}

type PassageOutput struct {
	Token      string
	Section    int
	Paragraphs []string
}

type HighlightInput struct {
	Paragraph int
	Color     string
}

type HighlightOutput struct {
	ID    string
	Range string
	Text  string
	Color string
}

type RemoveHighlightInput struct {
	ID    string
	Range string
}

type ContextOutput struct {
	BookID           string
	Title            string
	Author           string
	ChapterName      string
	Progress         float64
	PreviousChapters []string
	StartAnchor      string
	EndAnchor        string
}

type SurroundingOutput struct {
	Text        string
	Surrounding string
}

type ChromeOutput struct {
	ControlsVisible bool
	InFocus         bool
	ExitVisible     bool
	Panel           string
}
