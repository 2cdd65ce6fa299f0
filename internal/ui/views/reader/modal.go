package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	companiondto "atheneum/internal/modules/companion/dto"
	focusdto "atheneum/internal/modules/focus/dto"
	readerdto "atheneum/internal/modules/reader/dto"
	"atheneum/internal/ui/theme"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalRecall
	modalPrediction
	modalReflection
	modalSummary
	modalExplain
	modalFocus
	modalTOC
	modalAppearance
	modalDefine
)

type modalState struct {
	kind      modalKind
	title     string
	text      string
	note      string
	err       error
	busy      bool
	cancel    context.CancelFunc
	length    string
	paragraph int
	asking    bool
}

type focusState struct {
	status   focusdto.StatusOutput
	goal     int
	chosen   bool
	ambience int
}

var (
	recallLengths = []string{"quick", "standard", "detailed"}
	focusGoals    = []int{15, 25, 45, 0}
	ambiences     = []string{"silence", "rain", "cafe", "forest"}
)

// syncFlow opens the modal matching the companion's state.
func (m *Model) syncFlow() tea.Cmd {
	switch m.flow.State {
	case "recall":
		if m.modal.kind == modalRecall {
			return nil
		}
		title := "Welcome back"
		if m.flow.Orientation {
			title = "Before you begin"
		}
		ctx, cancel := context.WithCancel(context.Background())
		m.modal = modalState{kind: modalRecall, title: title, busy: true, cancel: cancel, length: m.flow.Length}
		return tea.Batch(m.loadRecallCmd(ctx, ""), m.spinner.Tick)
	case "prediction":
		m.modal = modalState{kind: modalPrediction, title: "Before you read"}
		if !m.flow.NeedsGenre {
			m.input.Reset()
			m.input.Placeholder = m.flow.Question
			return m.input.Focus()
		}
	case "reflection":
		m.input.Blur()
		m.modal = modalState{kind: modalReflection, title: "Looking back"}
	case "reading":
		switch m.modal.kind {
		case modalRecall, modalPrediction, modalReflection:
			m.input.Blur()
			m.modal = modalState{}
		}
	}
	return nil
}

func (m Model) startAI(kind modalKind, title string, run func(context.Context) tea.Cmd, cmds []tea.Cmd) (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.modal = modalState{kind: kind, title: title, busy: true, cancel: cancel, paragraph: m.cursor}
	return m, tea.Batch(append(cmds, run(ctx), m.spinner.Tick)...)
}

// closeModal cancels any request still running for it.
func (m *Model) closeModal() {
	if m.modal.cancel != nil {
		m.modal.cancel()
	}
	m.input.Blur()
	m.modal = modalState{}
}

func (m Model) onRecall(msg recallMsg) (Model, tea.Cmd) {
	if m.modal.kind != modalRecall {
		return m, nil
	}
	m.modal.busy = false
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		m.modal.err = msg.err
		return m, nil
	}
	m.modal.err = nil
	m.modal.length = msg.out.Length
	if msg.out.Regenerated {
		m.modal.text = msg.out.Text
	}
	return m, nil
}

func (m Model) onAI(msg aiMsg) (Model, tea.Cmd) {
	if m.modal.kind != msg.modal {
		return m, nil
	}
	m.modal.busy = false
	if msg.err != nil {
		if !errors.Is(msg.err, context.Canceled) {
			m.modal.err = msg.err
		}
		return m, nil
	}
	m.modal.err = nil
	m.modal.text = msg.text
	if msg.modal == modalSummary && !msg.saved {
		m.modal.note = "not saved to notes"
	}
	return m, nil
}

func (m Model) onFocus(msg focusMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		return m, status(msg.err.Error())
	}
	wasActive := m.focus.status.Active
	m.focus.status = msg.status
	var cmds []tea.Cmd
	if msg.status.AmbienceError != "" && !wasActive {
		cmds = append(cmds, status("ambience unavailable: "+msg.status.AmbienceError))
	}
	if msg.status.Completed {
		cmds = append(cmds, status(fmt.Sprintf("Focus goal reached: %d minutes", int(msg.status.Goal.Minutes()))))
	} else if msg.status.Active {
		cmds = append(cmds, focusTick())
	}
	if wasActive != msg.status.Active {
		active := msg.status.Active
		cmds = append(cmds, m.chromeCmd(func(ctx context.Context) readerdto.ChromeOutput {
			return m.ports.Reader.SetFocus(ctx, active)
		}))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateModal(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	switch m.modal.kind {
	case modalRecall:
		switch key {
		case "1", "2", "3":
			length := recallLengths[key[0]-'1']
			m.modal.length = length
			if m.modal.cancel != nil {
				m.modal.cancel()
			}
			ctx, cancel := context.WithCancel(context.Background())
			m.modal.cancel = cancel
			m.modal.busy = m.modal.text != "" && !m.flow.Orientation
			return m, tea.Batch(m.loadRecallCmd(ctx, length), m.spinner.Tick)
		case "enter", "esc", "q":
			m.closeModal()
			return m, m.flowCmd(m.ports.Companion.DismissRecall)
		}

	case modalPrediction:
		if m.flow.NeedsGenre {
			switch key {
			case "f":
				return m, m.flowCmd(func(ctx context.Context) (companiondto.FlowOutput, error) {
					return m.ports.Companion.ChooseGenre(ctx, "fiction")
				})
			case "n":
				return m, m.flowCmd(func(ctx context.Context) (companiondto.FlowOutput, error) {
					return m.ports.Companion.ChooseGenre(ctx, "nonfiction")
				})
			case "esc":
				m.closeModal()
				return m, m.flowCmd(m.ports.Companion.SkipPrediction)
			}
			return m, nil
		}
		switch key {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Blur()
			return m, m.flowCmd(func(ctx context.Context) (companiondto.FlowOutput, error) {
				return m.ports.Companion.SubmitPrediction(ctx, text)
			})
		case "esc":
			m.closeModal()
			return m, m.flowCmd(m.ports.Companion.SkipPrediction)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case modalReflection:
		if i := outcomeIndex(key); i >= 0 && i < len(m.flow.Outcomes) {
			outcome := m.flow.Outcomes[i]
			return m, m.flowCmd(func(ctx context.Context) (companiondto.FlowOutput, error) {
				return m.ports.Companion.Reflect(ctx, outcome)
			})
		}
		if key == "esc" || key == "s" {
			return m, m.flowCmd(m.ports.Companion.SkipReflection)
		}

	case modalSummary:
		if key == "esc" || key == "q" || key == "enter" {
			m.closeModal()
		}

	case modalExplain:
		if m.modal.asking {
			switch key {
			case "enter":
				question := strings.TrimSpace(m.input.Value())
				if question == "" || m.modal.text == "" {
					return m, nil
				}
				m.input.Blur()
				m.modal.asking = false
				m.modal.busy = true
				prior := m.modal.text
				ctx, cancel := context.WithCancel(context.Background())
				m.modal.cancel = cancel
				return m, tea.Batch(m.followUpCmd(ctx, m.modal.paragraph, prior, question), m.spinner.Tick)
			case "esc":
				m.input.Blur()
				m.modal.asking = false
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		switch key {
		case "a":
			if m.modal.busy || m.modal.text == "" {
				return m, nil
			}
			m.modal.asking = true
			m.input.Reset()
			m.input.Placeholder = "Ask a follow-up question"
			cmd := m.input.Focus()
			return m, cmd
		case "w":
			if m.modal.text == "" {
				return m, nil
			}
			return m, m.saveExplanationCmd(m.opened.BookID, m.modal.paragraph, m.modal.text)
		case "esc", "q":
			m.closeModal()
		}

	case modalFocus:
		switch key {
		case "1", "2", "3", "4":
			m.focus.goal = focusGoals[key[0]-'1']
			m.focus.chosen = true
		case "a":
			m.focus.ambience = (m.focus.ambience + 1) % len(ambiences)
		case "enter":
			m.modal = modalState{}
			return m, m.focusStartCmd(m.focus.goal, ambiences[m.focus.ambience])
		case "esc", "q":
			m.modal = modalState{}
		}

	case modalAppearance:
		return m.updateAppearance(key)

	case modalDefine:
		if m.modal.asking {
			switch key {
			case "enter":
				return m.lookUp(m.input.Value())
			case "esc":
				m.closeModal()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		switch key {
		case "d":
			return m.askWord()
		case "esc", "q", "enter":
			m.closeModal()
		}

	case modalTOC:
		if m.toc.FilterState() != list.Filtering {
			switch key {
			case "enter":
				item, ok := m.toc.SelectedItem().(tocItem)
				m.modal = modalState{}
				cmds := []tea.Cmd{m.chromeCmd(m.ports.Reader.ClosePanel)}
				if ok {
					token := item.entry.Token
					cmds = append(cmds, m.navCmd(func(ctx context.Context) error { return m.ports.Reader.GoToToken(ctx, token) }))
				}
				return m, tea.Batch(cmds...)
			case "esc", "q", "t":
				m.modal = modalState{}
				return m, m.chromeCmd(m.ports.Reader.ClosePanel)
			}
		}
		var cmd tea.Cmd
		m.toc, cmd = m.toc.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) modalView() string {
	width := min(76, max(30, m.width-8))
	var sb strings.Builder
	if m.modal.title != "" {
		sb.WriteString(theme.Title.Render(m.modal.title) + "\n\n")
	}
	switch m.modal.kind {
	case modalRecall:
		sb.WriteString(m.bodyView())
		sb.WriteString("\n")
		if !m.flow.Orientation {
			var tiers []string
			for i, l := range recallLengths {
				label := fmt.Sprintf("%d %s", i+1, l)
				if l == m.modal.length {
					label = theme.Hot.Render(label)
				} else {
					label = theme.Muted.Render(label)
				}
				tiers = append(tiers, label)
			}
			sb.WriteString(strings.Join(tiers, "  ") + "\n")
		}
		sb.WriteString(theme.Muted.Render("enter: start reading"))

	case modalPrediction:
		if m.flow.NeedsGenre {
			sb.WriteString("What kind of book is this?\n\n")
			sb.WriteString(theme.Hot.Render("f") + " fiction   " + theme.Hot.Render("n") + " nonfiction\n\n")
			sb.WriteString(theme.Muted.Render("esc: skip"))
			break
		}
		sb.WriteString(m.flow.Question + "\n\n")
		sb.WriteString(m.input.View() + "\n\n")
		sb.WriteString(theme.Muted.Render("enter: save  esc: skip"))

	case modalReflection:
		sb.WriteString("Did it go the way you expected?\n\n")
		for i, o := range m.flow.Outcomes {
			sb.WriteString(fmt.Sprintf("%s %s   ", theme.Hot.Render(fmt.Sprint(i+1)), outcomeLabel(o)))
		}
		sb.WriteString("\n\n" + theme.Muted.Render("esc: skip"))

	case modalSummary:
		sb.WriteString(m.bodyView())
		if m.modal.note != "" {
			sb.WriteString(theme.Muted.Render(m.modal.note) + "\n")
		}
		sb.WriteString(theme.Muted.Render("esc: close"))

	case modalExplain:
		sb.WriteString(m.bodyView())
		if m.modal.asking {
			sb.WriteString(m.input.View() + "\n\n")
			sb.WriteString(theme.Muted.Render("enter: ask  esc: cancel"))
		} else {
			sb.WriteString(theme.Muted.Render("a: ask a follow-up  w: save to notes  esc: close"))
		}

	case modalFocus:
		sb.WriteString(theme.Title.Render("Focus session") + "\n\n")
		for i, g := range focusGoals {
			label := fmt.Sprintf("%d %d min", i+1, g)
			if g == 0 {
				label = fmt.Sprintf("%d no goal", i+1)
			}
			if g == m.focus.goal {
				label = theme.Hot.Render(label)
			}
			sb.WriteString(label + "   ")
		}
		sb.WriteString("\n\nAmbience: " + theme.Hot.Render(ambiences[m.focus.ambience]) + theme.Muted.Render("  (a to change)") + "\n\n")
		sb.WriteString(theme.Muted.Render("enter: start  esc: cancel"))

	case modalAppearance:
		sb.WriteString(m.appearanceView())

	case modalDefine:
		if m.modal.asking {
			sb.WriteString(m.input.View() + "\n\n")
			sb.WriteString(theme.Muted.Render("enter: look up  esc: cancel"))
			break
		}
		sb.WriteString(m.bodyView())
		sb.WriteString(theme.Muted.Render("d: another word  esc: close"))

	case modalTOC:
		return theme.Modal.Width(width).Render(m.toc.View() + "\n" + theme.Muted.Render("enter: go  /: filter  esc: close"))
	}
	return theme.Modal.Width(width).Render(sb.String())
}

// askWord opens the dictionary card on its word prompt.
func (m Model) askWord() (Model, tea.Cmd) {
	m.closeModal()
	m.modal = modalState{kind: modalDefine, title: "Dictionary", asking: true}
	m.input.Reset()
	m.input.Placeholder = "Word to define"
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) lookUp(word string) (Model, tea.Cmd) {
	word = strings.TrimSpace(word)
	if word == "" {
		return m, nil
	}
	if m.modal.cancel != nil {
		m.modal.cancel()
	}
	m.input.Blur()
	ctx, cancel := context.WithCancel(context.Background())
	m.modal = modalState{kind: modalDefine, title: "Dictionary", busy: true, cancel: cancel}
	return m, tea.Batch(m.defineCmd(ctx, word), m.spinner.Tick)
}

func (m Model) bodyView() string {
	switch {
	case m.modal.busy:
		return m.spinner.View() + " Thinking…\n\n"
	case m.modal.err != nil:
		return theme.Hot.Render(m.ports.Message(m.modal.err)) + "\n\n"
	case m.modal.text == "":
		return theme.Muted.Render("Choose a length to generate.") + "\n\n"
	}
	if m.markdown != nil {
		if out, err := m.markdown.Render(m.modal.text); err == nil {
			return out
		}
	}
	return m.modal.text + "\n\n"
}

func outcomeLabel(o string) string {
	switch o {
	case "yes":
		return "Yes"
	case "partly":
		return "Partly"
	case "noyet":
		return "Not yet"
	default:
		return "No"
	}
}

func outcomeIndex(key string) int {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return -1
	}
	return int(key[0] - '1')
}
