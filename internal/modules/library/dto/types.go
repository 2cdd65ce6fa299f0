package dto

import "time"

type AddBookInput struct {
	Kind       string
	Title      string
	Author     string
	FilePath   string
	TotalPages int
}

// UpdateCursorInput is a write-through location. Progress < 0 means the
// renderer did not report a fraction; Page <= 0 leaves the page alone.
type UpdateCursorInput struct {
	BookID   string
	Cursor   string
	Progress float64
	Page     int
}

type AppendSessionInput struct {
	BookID      string
	PagesRead   int
	DurationMs  int64
	MaxLocation int
}

type LogPhysicalInput struct {
	BookID     string
	NewPage    int
	DurationMs int64
}

type AddHighlightInput struct {
	BookID string
	Range  string
	Text   string
	Color  string
	Note   string
}

type SaveSummaryInput struct {
	BookID      string
	ChapterName string
	Text        string
}

type SetOutcomeInput struct {
	BookID    string
	CreatedAt time.Time
	Outcome   string
}

type BookOutput struct {
	ID          string
	Kind        string
	Title       string
	Author      string
	Genre       string
	Percent     float64
	CurrentPage int
	TotalPages  int
	LastReadAt  time.Time
}

type SessionOutput struct {
	OccurredAt  time.Time
	PagesRead   int
	DurationMs  int64
	MaxLocation int
}

type BookDetailOutput struct {
	BookOutput
	FilePath     string
	Cursor       string
	Progress     float64
	AddedAt      time.Time
	IsNew        bool
	SessionCount int
	Sessions     []SessionOutput
}

type HighlightOutput struct {
	ID        string
	Range     string
	Text      string
	Color     string
	Note      string
	CreatedAt time.Time
}

type SummaryOutput struct {
	ID          string
	ChapterName string
	Text        string
	CreatedAt   time.Time
}

type PredictionOutput struct {
	Text      string
	Genre     string
	Outcome   string
	CreatedAt time.Time
}

type StatsOutput struct {
	TotalBooks      int
	TotalPages      int
	TotalDurationMs int64
	PagesPerMinute  float64
}

type ExportOutput struct {
	BookID string
	Path   string
}
