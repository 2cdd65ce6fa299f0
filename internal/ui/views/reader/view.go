package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	companiondto "atheneum/internal/modules/companion/dto"
	focusdto "atheneum/internal/modules/focus/dto"
	readerdto "atheneum/internal/modules/reader/dto"
	"atheneum/internal/platform/config"
	"atheneum/internal/ui/theme"
)

// Model is the reading screen: one attached book, its prompts and modals.
type Model struct {
	ports    Ports
	viewport viewport.Model
	spinner  spinner.Model
	markdown *glamour.TermRenderer
	input    textinput.Model
	toc      list.Model

	opened     readerdto.OpenOutput
	loc        readerdto.LocationOutput
	passage    readerdto.PassageOutput
	passageErr error
	cursor     int
	chrome     readerdto.ChromeOutput
	flow       companiondto.FlowOutput
	loading    bool
	exiting    bool

	modal modalState
	focus focusState
	look  config.Appearance

	width  int
	height int
}

func New(ports Ports) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	in := textinput.New()
	in.CharLimit = 500

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	toc := list.New(nil, delegate, 0, 0)
	toc.Title = "Contents"
	toc.Styles.Title = theme.Title
	toc.SetShowHelp(false)

	if ports.Message == nil {
		ports.Message = func(err error) string { return "Error: " + err.Error() }
	}
	look := config.DefaultAppearance()
	if ports.Appearance != nil {
		look = ports.Appearance.Appearance()
	}
	return Model{
		ports:    ports,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		markdown: newMarkdown(60, markdownStyle(look)),
		input:    in,
		toc:      toc,
		chrome:   readerdto.ChromeOutput{ControlsVisible: true},
		look:     look,
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Attached reports whether a book is open; the app then routes keys here.
func (m Model) Attached() bool { return m.opened.BookID != "" }

// TypingText reports whether a text field owns the keyboard.
func (m Model) TypingText() bool { return m.input.Focused() || m.toc.FilterState() == list.Filtering }

// Open attaches a book. Any book already open is closed by the reader.
func (m *Model) Open(bookID string) tea.Cmd {
	m.loading = true
	m.exiting = false
	m.modal = modalState{}
	return tea.Batch(m.openCmd(bookID), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.loading || m.modal.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case openedMsg:
		m.loading = false
		if msg.err != nil {
			return m, func() tea.Msg { return OpenedMsg{Err: msg.err} }
		}
		m.opened = msg.out
		m.loc = readerdto.LocationOutput{BookID: msg.out.BookID}
		m.passage, m.passageErr, m.cursor = readerdto.PassageOutput{}, nil, 0
		m.chrome = readerdto.ChromeOutput{ControlsVisible: true}
		m.focus = focusState{}
		m.setTOC(msg.out.TOC)
		cmds := []tea.Cmd{
			m.nextEventCmd(msg.out.Generation, msg.out.Events),
			func() tea.Msg { return OpenedMsg{Title: msg.out.Title} },
		}
		if msg.flowErr != nil {
			cmds = append(cmds, status("prompts unavailable: "+msg.flowErr.Error()))
		} else {
			m.flow = msg.flow
			cmds = append(cmds, m.syncFlow())
		}
		return m, tea.Batch(cmds...)

	case locatedMsg:
		if msg.gen != m.opened.Generation {
			return m, nil
		}
		next := m.nextEventCmd(msg.gen, m.opened.Events)
		if msg.err != nil {
			return m, tea.Batch(next, status(msg.err.Error()))
		}
		if msg.loc.Stale || msg.loc.BookID != m.opened.BookID {
			return m, next
		}
		samePassage := msg.passage.Token == m.passage.Token && msg.passageErr == nil
		m.loc, m.passageErr = msg.loc, msg.passageErr
		if msg.passageErr == nil {
			m.passage = msg.passage
		}
		if !samePassage {
			m.cursor = 0
			m.viewport.GotoTop()
		}
		m.renderPassage()
		return m, next

	case chromeMsg:
		m.chrome = msg.chrome
		m.resize()
		return m, nil

	case flowMsg:
		if msg.err != nil {
			if m.exiting {
				return m.closed()
			}
			return m, status(msg.err.Error())
		}
		m.flow = msg.flow
		var cmds []tea.Cmd
		if msg.status != "" {
			cmds = append(cmds, status(msg.status))
		}
		if m.flow.State == "exited" {
			model, cmd := m.closed()
			return model, tea.Batch(append(cmds, cmd)...)
		}
		return m, tea.Batch(append(cmds, m.syncFlow())...)

	case recallMsg:
		return m.onRecall(msg)

	case aiMsg:
		return m.onAI(msg)

	case focusMsg:
		return m.onFocus(msg)

	case focusTickMsg:
		if !m.focus.status.Active {
			return m, nil
		}
		return m, m.focusTickCmd()

	case tea.KeyMsg:
		if !m.Attached() || m.loading {
			return m, nil
		}
		if m.modal.kind != modalNone {
			return m.updateModal(msg)
		}
		return m.updateReading(msg)
	}

	if m.modal.kind == modalTOC {
		var cmd tea.Cmd
		m.toc, cmd = m.toc.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateReading(msg tea.KeyMsg) (Model, tea.Cmd) {
	cmds := []tea.Cmd{m.interactCmd()}
	switch msg.String() {
	case "right", "l", "pgdown", " ":
		if m.look.Flow == config.FlowScrolled && !m.viewport.AtBottom() {
			m.viewport.PageDown()
			break
		}
		cmds = append(cmds, m.navCmd(m.ports.Reader.Next))
	case "left", "h", "pgup":
		if m.look.Flow == config.FlowScrolled && !m.viewport.AtTop() {
			m.viewport.PageUp()
			break
		}
		cmds = append(cmds, m.navCmd(m.ports.Reader.Prev))
	case "down", "j":
		m.moveCursor(1)
	case "up", "k":
		m.moveCursor(-1)
	case "enter":
		cmds = append(cmds, m.chromeCmd(m.ports.Reader.Tap))
	case "t":
		m.modal = modalState{kind: modalTOC}
		cmds = append(cmds, m.chromeCmd(func(ctx context.Context) readerdto.ChromeOutput {
			return m.ports.Reader.TogglePanel(ctx, "toc")
		}))
	case "s":
		return m.startAI(modalSummary, "Summary so far", func(ctx context.Context) tea.Cmd {
			return m.summaryCmd(ctx, m.opened.BookID)
		}, cmds)
	case "x":
		if !m.hasParagraphs() {
			return m, tea.Batch(append(cmds, status("nothing selected to explain"))...)
		}
		paragraph := m.cursor
		return m.startAI(modalExplain, "Explain", func(ctx context.Context) tea.Cmd {
			return m.explainCmd(ctx, paragraph)
		}, cmds)
	case "r":
		cmds = append(cmds, m.flowCmd(m.ports.Companion.ShowRecall))
	case "a":
		model, cmd := m.openAppearance()
		return model, tea.Batch(append(cmds, cmd)...)
	case "d":
		model, cmd := m.askWord()
		return model, tea.Batch(append(cmds, cmd)...)
	case "m":
		if m.hasParagraphs() {
			cmds = append(cmds, m.highlightCmd(m.cursor, "yellow"))
		}
	case "b":
		if m.hasParagraphs() {
			cmds = append(cmds, m.highlightCmd(m.cursor, "gray"))
		}
	case "f":
		if m.focus.status.Active {
			cmds = append(cmds, m.focusStopCmd())
		} else {
			m.modal = modalState{kind: modalFocus}
			if m.focus.goal == 0 && !m.focus.chosen {
				m.focus.goal = 25
			}
		}
	case "q", "esc":
		m.exiting = true
		cmds = append(cmds, m.exitCmd(m.focus.status.Active))
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// RunCommand executes a palette command aimed at the open book.
func (m Model) RunCommand(name string, args []string) (Model, tea.Cmd) {
	if !m.Attached() {
		return m, status("open a book first")
	}
	switch name {
	case "goto":
		var pct float64
		if len(args) == 0 {
			return m, status("usage: goto <percent>")
		}
		if _, err := fmt.Sscanf(args[0], "%g", &pct); err != nil || pct < 0 || pct > 100 {
			return m, status("goto expects a percentage between 0 and 100")
		}
		return m, m.navCmd(func(ctx context.Context) error { return m.ports.Reader.GoToFraction(ctx, pct/100) })
	case "highlight":
		color := "yellow"
		if len(args) > 0 {
			color = args[0]
		}
		return m, m.highlightCmd(m.cursor, color)
	case "bookmark":
		return m, m.highlightCmd(m.cursor, "gray")
	case "summary":
		return m.updateReading(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	case "explain":
		return m.updateReading(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	case "recall":
		return m, m.flowCmd(m.ports.Companion.ShowRecall)
	case "define":
		if len(args) == 0 {
			return m.askWord()
		}
		return m.lookUp(strings.Join(args, " "))
	case "appearance":
		return m.openAppearance()
	case "focus":
		goal := 25
		ambience := "silence"
		if len(args) > 0 {
			if _, err := fmt.Sscanf(args[0], "%d", &goal); err != nil {
				return m, status("usage: focus <minutes> [ambience]")
			}
		}
		if len(args) > 1 {
			ambience = args[1]
		}
		return m, m.focusStartCmd(goal, ambience)
	case "focus:stop":
		return m, m.focusStopCmd()
	}
	return m, status("unknown command: " + name)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Opening book…")
	}
	if !m.Attached() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("Pick a book in the Library and press enter"))
	}
	body := m.viewport.View()
	if m.modal.kind != modalNone {
		body = lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, m.modalView())
	}
	parts := []string{}
	if m.chrome.ControlsVisible {
		parts = append(parts, m.renderHeader())
	}
	parts = append(parts, body)
	if m.chrome.ControlsVisible {
		parts = append(parts, m.renderFooter())
	} else if m.chrome.ExitVisible {
		parts = append(parts, theme.Muted.Render("f: leave focus"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) resize() {
	m.viewport.Width = m.width
	h := m.height
	if m.chrome.ControlsVisible {
		h -= 3
	} else {
		h--
	}
	m.viewport.Height = max(1, h)
	m.toc.SetSize(min(60, m.width-8), max(5, m.viewport.Height-6))
	m.markdown = newMarkdown(min(72, m.width-10), markdownStyle(m.look))
	m.input.Width = min(60, m.width-12)
	m.renderPassage()
}

func (m Model) renderHeader() string {
	title := theme.Title.Render(m.opened.Title)
	if m.opened.Author != "" {
		title += theme.Muted.Render("  " + m.opened.Author)
	}
	chapter := m.loc.ChapterName
	if chapter == "" {
		chapter = "…"
	}
	line := title + theme.Muted.Render("  ·  "+chapter)
	if m.focus.status.Active {
		line += "  " + theme.Hot.Render(focusLabel(m.focus.status))
	}
	return line + "\n"
}

func (m Model) renderFooter() string {
	pos := fmt.Sprintf("%.1f%%", m.loc.Percentage*100)
	if m.loc.Total > 0 {
		pos = fmt.Sprintf("p.%d/%d  %s", m.loc.Page, m.loc.Total, pos)
	}
	if m.loc.Degraded {
		pos += " ~"
	}
	keys := "←/→ turn  j/k select  t contents  s summary  x explain  d define  r recall  m mark  b bookmark  a look  f focus  q back"
	return "\n" + theme.Hot.Render(pos) + "  " + theme.Muted.Render(keys)
}

func (m *Model) renderPassage() {
	if !m.Attached() {
		return
	}
	if m.passageErr != nil {
		m.viewport.SetContent(theme.Muted.Render(
			"This book is open in an external viewer.\nPress → after turning pages there to keep your progress."))
		return
	}
	text := textStyle(m.look).Width(columnWidth(m.width, m.look.FontSize))
	var sb strings.Builder
	for i, p := range m.passage.Paragraphs {
		marker := "  "
		if i == m.cursor {
			marker = theme.Hot.Render("▌ ")
		}
		block := text.Render(p)
		lines := strings.Split(block, "\n")
		for j, l := range lines {
			if j == 0 {
				sb.WriteString(marker + l + "\n")
			} else {
				sb.WriteString("  " + l + "\n")
			}
		}
		sb.WriteString("\n")
	}
	if len(m.passage.Paragraphs) == 0 {
		sb.WriteString(theme.Muted.Render("(empty section)"))
	}
	m.viewport.SetContent(sb.String())
}

func (m *Model) moveCursor(delta int) {
	if !m.hasParagraphs() {
		return
	}
	m.cursor = max(0, min(len(m.passage.Paragraphs)-1, m.cursor+delta))
	m.renderPassage()
	if delta > 0 {
		m.viewport.LineDown(2)
	} else {
		m.viewport.LineUp(2)
	}
}

func (m Model) hasParagraphs() bool {
	return m.passageErr == nil && len(m.passage.Paragraphs) > 0
}

func (m *Model) setTOC(entries []readerdto.TOCEntry) {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = tocItem{entry: e}
	}
	m.toc.SetItems(items)
}

func (m Model) closed() (Model, tea.Cmd) {
	m.opened = readerdto.OpenOutput{}
	m.modal = modalState{}
	m.focus = focusState{}
	m.exiting = false
	m.flow = companiondto.FlowOutput{}
	return m, func() tea.Msg { return ClosedMsg{} }
}

type tocItem struct{ entry readerdto.TOCEntry }

func (i tocItem) Title() string       { return strings.Repeat("  ", i.entry.Depth) + i.entry.Label }
func (i tocItem) Description() string { return "" }
func (i tocItem) FilterValue() string { return i.entry.Label }

func focusLabel(st focusdto.StatusOutput) string {
	if st.Goal == 0 {
		return fmt.Sprintf("focus %02d:%02d", int(st.Elapsed.Minutes()), int(st.Elapsed.Seconds())%60)
	}
	return fmt.Sprintf("focus %02d:%02d left", int(st.Remaining.Minutes()), int(st.Remaining.Seconds())%60)
}

func newMarkdown(width int, style string) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(glamour.WithStylePath(style), glamour.WithWordWrap(max(20, width)))
	if err != nil {
		return nil
	}
	return r
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}
