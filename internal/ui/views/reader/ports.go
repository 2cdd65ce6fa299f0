package reader

import (
	"context"

	assistdto "atheneum/internal/modules/assist/dto"
	companiondto "atheneum/internal/modules/companion/dto"
	focusdto "atheneum/internal/modules/focus/dto"
	readerdto "atheneum/internal/modules/reader/dto"
	"atheneum/internal/platform/config"
)

// Port is what the view needs from the reader use case.
type Port interface {
	Open(ctx context.Context, bookID string) (readerdto.OpenOutput, error)
	Handle(ctx context.Context, generation uint64, ev readerdto.LocationEvent) (readerdto.LocationOutput, error)
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	GoToFraction(ctx context.Context, fraction float64) error
	GoToToken(ctx context.Context, token string) error
	Passage(ctx context.Context) (readerdto.PassageOutput, error)
	Surrounding(ctx context.Context, paragraph int) (readerdto.SurroundingOutput, error)
	Highlight(ctx context.Context, paragraph int, color string) (readerdto.HighlightOutput, error)
	Context(ctx context.Context) (readerdto.ContextOutput, error)
	Interact(ctx context.Context) error
	Tap(ctx context.Context) readerdto.ChromeOutput
	TogglePanel(ctx context.Context, panel string) readerdto.ChromeOutput
	ClosePanel(ctx context.Context) readerdto.ChromeOutput
	SetFocus(ctx context.Context, on bool) readerdto.ChromeOutput
	Close(ctx context.Context) error
}

type CompanionPort interface {
	Open(ctx context.Context, bookID string) (companiondto.FlowOutput, error)
	ShowRecall(ctx context.Context) (companiondto.FlowOutput, error)
	LoadRecall(ctx context.Context) (companiondto.RecallOutput, error)
	SelectLength(ctx context.Context, length string) (companiondto.RecallOutput, error)
	DismissRecall(ctx context.Context) (companiondto.FlowOutput, error)
	ChooseGenre(ctx context.Context, genre string) (companiondto.FlowOutput, error)
	SubmitPrediction(ctx context.Context, text string) (companiondto.FlowOutput, error)
	SkipPrediction(ctx context.Context) (companiondto.FlowOutput, error)
	RequestExit(ctx context.Context) (companiondto.FlowOutput, error)
	Reflect(ctx context.Context, outcome string) (companiondto.FlowOutput, error)
	SkipReflection(ctx context.Context) (companiondto.FlowOutput, error)
}

type AssistPort interface {
	Summarize(ctx context.Context, input assistdto.SummaryInput) (assistdto.SummaryOutput, error)
	Explain(ctx context.Context, input assistdto.ExplainInput) (string, error)
	FollowUp(ctx context.Context, input assistdto.FollowUpInput) (string, error)
	SaveExplanation(ctx context.Context, bookID, text, explanation string) (string, error)
	Define(ctx context.Context, word string) (assistdto.DefinitionOutput, error)
}

type FocusPort interface {
	Start(ctx context.Context, goalMinutes int, ambience string) (focusdto.StatusOutput, error)
	Tick(ctx context.Context) focusdto.StatusOutput
	Stop(ctx context.Context) focusdto.StatusOutput
}

// AppearancePort reads and stores how text is laid out.
type AppearancePort interface {
	Appearance() config.Appearance
	SetAppearance(a config.Appearance) error
}

// Ports bundles the use cases behind the reading screen.
type Ports struct {
	Reader    Port
	Companion CompanionPort
	Assist    AssistPort
	Focus     FocusPort
	// Appearance may be nil; the defaults are used and nothing is saved.
	Appearance AppearancePort
	// Message turns an AI error into the sentence shown to the reader.
	Message func(error) string
}
