package domain

// RecallContext is the reading position a recall card is written for.
type RecallContext struct {
	Title            string
	Author           string
	ChapterName      string
	Progress         float64
	PreviousChapters []string
	StartAnchor      string
	Length           Length
}
