package reader

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	assistdto "atheneum/internal/modules/assist/dto"
	companiondto "atheneum/internal/modules/companion/dto"
	focusdto "atheneum/internal/modules/focus/dto"
	readerdto "atheneum/internal/modules/reader/dto"
)

// OpenedMsg tells the app a book is attached, or why it is not.
type OpenedMsg struct {
	Title string
	Err   error
}

// ClosedMsg tells the app the reading screen has exited.
type ClosedMsg struct{}

// StatusMsg carries a one-line message for the status bar.
type StatusMsg struct{ Text string }

type openedMsg struct {
	out     readerdto.OpenOutput
	flow    companiondto.FlowOutput
	flowErr error
	err     error
}

type locatedMsg struct {
	gen        uint64
	loc        readerdto.LocationOutput
	passage    readerdto.PassageOutput
	passageErr error
	err        error
}

type flowMsg struct {
	flow   companiondto.FlowOutput
	err    error
	status string
}

type recallMsg struct {
	out companiondto.RecallOutput
	err error
}

type aiMsg struct {
	modal modalKind
	text  string
	saved bool
	err   error
}

type focusMsg struct {
	status focusdto.StatusOutput
	err    error
}

type focusTickMsg struct{}

type chromeMsg struct{ chrome readerdto.ChromeOutput }

func (m Model) openCmd(bookID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		out, err := m.ports.Reader.Open(ctx, bookID)
		if err != nil {
			return openedMsg{err: err}
		}
		flow, flowErr := m.ports.Companion.Open(ctx, bookID)
		return openedMsg{out: out, flow: flow, flowErr: flowErr}
	}
}

// nextEventCmd blocks on the renderer's event stream and reconciles the
// event it receives. Update re-arms it only after the result arrives, so
// events are handled one at a time in emission order.
func (m Model) nextEventCmd(gen uint64, events <-chan readerdto.LocationEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		ctx := context.Background()
		loc, err := m.ports.Reader.Handle(ctx, gen, ev)
		if err != nil || loc.Stale {
			return locatedMsg{gen: gen, loc: loc, err: err}
		}
		passage, perr := m.ports.Reader.Passage(ctx)
		return locatedMsg{gen: gen, loc: loc, passage: passage, passageErr: perr}
	}
}

func (m Model) navCmd(step func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := step(context.Background()); err != nil {
			return StatusMsg{Text: err.Error()}
		}
		return nil
	}
}

func (m Model) interactCmd() tea.Cmd {
	return func() tea.Msg {
		_ = m.ports.Reader.Interact(context.Background())
		return nil
	}
}

func (m Model) chromeCmd(fn func(context.Context) readerdto.ChromeOutput) tea.Cmd {
	return func() tea.Msg {
		return chromeMsg{chrome: fn(context.Background())}
	}
}

func (m Model) flowCmd(fn func(context.Context) (companiondto.FlowOutput, error)) tea.Cmd {
	return func() tea.Msg {
		flow, err := fn(context.Background())
		return flowMsg{flow: flow, err: err}
	}
}

func (m Model) loadRecallCmd(ctx context.Context, length string) tea.Cmd {
	return func() tea.Msg {
		var (
			out companiondto.RecallOutput
			err error
		)
		if length == "" {
			out, err = m.ports.Companion.LoadRecall(ctx)
		} else {
			out, err = m.ports.Companion.SelectLength(ctx, length)
		}
		return recallMsg{out: out, err: err}
	}
}

func (m Model) summaryCmd(ctx context.Context, bookID string) tea.Cmd {
	return func() tea.Msg {
		c, err := m.ports.Reader.Context(ctx)
		if err != nil {
			return aiMsg{modal: modalSummary, err: err}
		}
		out, err := m.ports.Assist.Summarize(ctx, assistdto.SummaryInput{
			BookID:           bookID,
			Title:            c.Title,
			Author:           c.Author,
			ChapterName:      c.ChapterName,
			Progress:         c.Progress,
			PreviousChapters: c.PreviousChapters,
			StartAnchor:      c.StartAnchor,
			EndAnchor:        c.EndAnchor,
		})
		return aiMsg{modal: modalSummary, text: out.Text, saved: out.Saved, err: err}
	}
}

func (m Model) explainCmd(ctx context.Context, paragraph int) tea.Cmd {
	return func() tea.Msg {
		c, err := m.ports.Reader.Context(ctx)
		if err != nil {
			return aiMsg{modal: modalExplain, err: err}
		}
		sel, err := m.ports.Reader.Surrounding(ctx, paragraph)
		if err != nil {
			return aiMsg{modal: modalExplain, err: err}
		}
		text, err := m.ports.Assist.Explain(ctx, explainInput(c, sel))
		return aiMsg{modal: modalExplain, text: text, err: err}
	}
}

func (m Model) followUpCmd(ctx context.Context, paragraph int, prior, question string) tea.Cmd {
	return func() tea.Msg {
		c, err := m.ports.Reader.Context(ctx)
		if err != nil {
			return aiMsg{modal: modalExplain, err: err}
		}
		sel, err := m.ports.Reader.Surrounding(ctx, paragraph)
		if err != nil {
			return aiMsg{modal: modalExplain, err: err}
		}
		text, err := m.ports.Assist.FollowUp(ctx, assistdto.FollowUpInput{
			ExplainInput:     explainInput(c, sel),
			PriorExplanation: prior,
			Question:         question,
		})
		return aiMsg{modal: modalExplain, text: text, err: err}
	}
}

func explainInput(c readerdto.ContextOutput, sel readerdto.SurroundingOutput) assistdto.ExplainInput {
	return assistdto.ExplainInput{
		SelectedText:    sel.Text,
		BookTitle:       c.Title,
		BookAuthor:      c.Author,
		ChapterName:     c.ChapterName,
		SurroundingText: sel.Surrounding,
	}
}

func (m Model) defineCmd(ctx context.Context, word string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.ports.Assist.Define(ctx, word)
		return aiMsg{modal: modalDefine, text: out.Markdown, err: err}
	}
}

func (m Model) saveExplanationCmd(bookID string, paragraph int, explanation string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		sel, err := m.ports.Reader.Surrounding(ctx, paragraph)
		if err != nil {
			return StatusMsg{Text: "save failed: " + err.Error()}
		}
		if _, err := m.ports.Assist.SaveExplanation(ctx, bookID, sel.Text, explanation); err != nil {
			return StatusMsg{Text: "save failed: " + err.Error()}
		}
		return StatusMsg{Text: "explanation saved to notes"}
	}
}

func (m Model) highlightCmd(paragraph int, color string) tea.Cmd {
	return func() tea.Msg {
		h, err := m.ports.Reader.Highlight(context.Background(), paragraph, color)
		if err != nil {
			return StatusMsg{Text: "highlight failed: " + err.Error()}
		}
		if h.Color == "gray" {
			return StatusMsg{Text: "bookmarked"}
		}
		return StatusMsg{Text: "highlighted in " + h.Color}
	}
}

func (m Model) focusStartCmd(goal int, ambience string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		st, err := m.ports.Focus.Start(ctx, goal, ambience)
		return focusMsg{status: st, err: err}
	}
}

func (m Model) focusStopCmd() tea.Cmd {
	return func() tea.Msg {
		return focusMsg{status: m.ports.Focus.Stop(context.Background())}
	}
}

func focusTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return focusTickMsg{} })
}

func (m Model) focusTickCmd() tea.Cmd {
	return func() tea.Msg {
		return focusMsg{status: m.ports.Focus.Tick(context.Background())}
	}
}

// exitCmd detaches the renderer, flushing pending writes, then asks the
// companion whether a reflection is due.
func (m Model) exitCmd(focusActive bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if focusActive {
			m.ports.Focus.Stop(ctx)
		}
		var status string
		if err := m.ports.Reader.Close(ctx); err != nil {
			status = "closing book: " + err.Error()
		}
		flow, err := m.ports.Companion.RequestExit(ctx)
		return flowMsg{flow: flow, err: err, status: status}
	}
}
