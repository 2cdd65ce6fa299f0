package dto

type SummaryInput struct {
	BookID           string
	Title            string
	Author           string
	ChapterName      string
	Progress         float64
	PreviousChapters []string
	StartAnchor      string
	EndAnchor        string
}

type SummaryOutput struct {
	Text  string
	Saved bool
}

type RecallInput struct {
	Title            string
	Author           string
	ChapterName      string
	Progress         float64
	PreviousChapters []string
	StartAnchor      string
	Length           string
}

type OrientationInput struct {
	Title  string
	Author string
}

type ExplainInput struct {
	SelectedText    string
	BookTitle       string
	BookAuthor      string
	ChapterName     string
	SurroundingText string
}

type FollowUpInput struct {
	ExplainInput
	PriorExplanation string
	Question         string
}

type TextOutput struct {
	Text string
}

type SaveExplanationInput struct {
	BookID      string
	Text        string
	Explanation string
}

type DefineInput struct {
	Word string
}

type DefinitionOutput struct {
	Word     string
	Phonetic string
	Meanings []MeaningOutput
	// Markdown is the entry rendered for display.
	Markdown string
}

type MeaningOutput struct {
	PartOfSpeech string
	Definitions  []string
}
