package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	libdto "atheneum/internal/modules/library/dto"
	"atheneum/internal/ui/theme"
)

type Port interface {
	ListHighlights(ctx context.Context, bookID string) ([]libdto.HighlightOutput, error)
	ListSummaries(ctx context.Context, bookID string) ([]libdto.SummaryOutput, error)
	ListPredictions(ctx context.Context, bookID string) ([]libdto.PredictionOutput, error)
	DeleteHighlight(ctx context.Context, bookID, highlightID string) error
	DeleteSummary(ctx context.Context, bookID, summaryID string) error
	ExportNotes(ctx context.Context, bookID string) (libdto.ExportOutput, error)
}

type LoadedMsg struct {
	BookID string
	Items  []Item
	Err    error
}

// StatusMsg reports the outcome of a delete or export to the status bar.
type StatusMsg struct {
	Text string
	Err  error
}

type kind int

const (
	kindHighlight kind = iota
	kindSummary
	kindPrediction
)

// Item is one row of the notes list.
type Item struct {
	kind   kind
	id     string
	title  string
	detail string
	color  string
}

func (i Item) Title() string {
	switch i.kind {
	case kindHighlight:
		return theme.Highlight(i.color, "▌") + " " + i.title
	case kindSummary:
		return "Summary · " + i.title
	default:
		return "Prediction · " + i.title
	}
}
func (i Item) Description() string { return i.detail }
func (i Item) FilterValue() string { return i.title + " " + i.detail }

type Model struct {
	port   Port
	list   list.Model
	bookID string
	title  string
	err    error
	width  int
	height int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Notes"
	l.Styles.Title = theme.Title
	l.SetShowHelp(false)
	return Model{port: port, list: l}
}

// Show loads the notes of a book.
func (m *Model) Show(bookID, title string) tea.Cmd {
	m.bookID, m.title = bookID, title
	m.list.Title = "Notes · " + title
	return m.loadCmd(bookID)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case LoadedMsg:
		if msg.BookID != m.bookID {
			return m, nil
		}
		m.err = msg.Err
		items := make([]list.Item, len(msg.Items))
		for i, it := range msg.Items {
			items[i] = it
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		if m.Filtering() || m.bookID == "" {
			break
		}
		switch msg.String() {
		case "d":
			if it, ok := m.list.SelectedItem().(Item); ok {
				return m, m.deleteCmd(it)
			}
		case "e":
			return m, m.exportCmd()
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.bookID == "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("Select a book in the Library and press n"))
	}
	if m.err != nil {
		return theme.Hot.Render("Notes unavailable: " + m.err.Error())
	}
	return m.list.View() + "\n" + theme.Muted.Render("d: delete  e: export markdown  /: filter")
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) loadCmd(bookID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		highlights, err := m.port.ListHighlights(ctx, bookID)
		if err != nil {
			return LoadedMsg{BookID: bookID, Err: err}
		}
		summaries, err := m.port.ListSummaries(ctx, bookID)
		if err != nil {
			return LoadedMsg{BookID: bookID, Err: err}
		}
		predictions, err := m.port.ListPredictions(ctx, bookID)
		if err != nil {
			return LoadedMsg{BookID: bookID, Err: err}
		}
		return LoadedMsg{BookID: bookID, Items: buildItems(highlights, summaries, predictions)}
	}
}

func buildItems(highlights []libdto.HighlightOutput, summaries []libdto.SummaryOutput, predictions []libdto.PredictionOutput) []Item {
	items := make([]Item, 0, len(highlights)+len(summaries)+len(predictions))
	for _, h := range highlights {
		detail := h.CreatedAt.Format("Jan 2 15:04")
		if h.Note != "" {
			detail += " · " + oneLine(h.Note)
		}
		items = append(items, Item{kind: kindHighlight, id: h.ID, title: oneLine(h.Text), detail: detail, color: h.Color})
	}
	for _, s := range summaries {
		items = append(items, Item{kind: kindSummary, id: s.ID, title: s.ChapterName, detail: oneLine(s.Text)})
	}
	for _, p := range predictions {
		outcome := p.Outcome
		if outcome == "" {
			outcome = "open"
		}
		items = append(items, Item{kind: kindPrediction, title: oneLine(p.Text), detail: fmt.Sprintf("%s · %s · %s", p.Genre, outcome, p.CreatedAt.Format("Jan 2"))})
	}
	return items
}

func (m Model) deleteCmd(it Item) tea.Cmd {
	bookID := m.bookID
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch it.kind {
		case kindHighlight:
			err = m.port.DeleteHighlight(ctx, bookID, it.id)
		case kindSummary:
			err = m.port.DeleteSummary(ctx, bookID, it.id)
		default:
			return StatusMsg{Text: "predictions are kept"}
		}
		if err != nil {
			return StatusMsg{Err: err}
		}
		return m.loadCmd(bookID)()
	}
}

func (m Model) exportCmd() tea.Cmd {
	bookID := m.bookID
	return func() tea.Msg {
		out, err := m.port.ExportNotes(context.Background(), bookID)
		if err != nil {
			return StatusMsg{Err: err}
		}
		return StatusMsg{Text: "notes exported to " + out.Path}
	}
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 90 {
		return string(r[:89]) + "…"
	}
	return s
}
