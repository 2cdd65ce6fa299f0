package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"atheneum/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle  = lipgloss.NewStyle().Foreground(theme.Subtext0)
	matchStyle = lipgloss.NewStyle().Foreground(theme.Lavender).Bold(true)
)

// hints must stay in sync with the switch in app/model.go executePalette.
var paletteHints = []string{
	"book:add <path> [title]",
	"book:genre <fiction|nonfiction>",
	"goto <percent>",
	"highlight <color>",
	"bookmark",
	"summary",
	"recall",
	"explain",
	"define <word>",
	"appearance",
	"focus <minutes> [silence|rain|cafe|forest]",
	"focus:stop",
	"notes:export",
	"settings:key <api-key>",
	"settings:style <fiction|non-fiction|technical>",
}

const maxHints = 5

// Palette is a command line overlay with fuzzy hints and a history
// recalled with up and down.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
	history []string
	cursor  int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 512
	ti.Prompt = ": "
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty input and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.cursor = len(p.history)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			if val != "" {
				p.history = append(p.history, val)
			}
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "up":
			if p.cursor > 0 {
				p.cursor--
				p.input.SetValue(p.history[p.cursor])
				p.input.CursorEnd()
			}
			return p, nil
		case "down":
			if p.cursor < len(p.history)-1 {
				p.cursor++
				p.input.SetValue(p.history[p.cursor])
			} else {
				p.cursor = len(p.history)
				p.input.SetValue("")
			}
			p.input.CursorEnd()
			return p, nil
		case "tab":
			if hints := p.matches(); len(hints) > 0 {
				p.input.SetValue(strings.Fields(hints[0])[0] + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p Palette) matches() []string {
	word := strings.ToLower(strings.TrimSpace(p.input.Value()))
	if i := strings.IndexByte(word, ' '); i >= 0 {
		word = word[:i]
	}
	if word == "" {
		return paletteHints[:maxHints]
	}
	var out []string
	for _, m := range fuzzy.Find(word, paletteHints) {
		out = append(out, m.Str)
		if len(out) == maxHints {
			break
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(p.input.View() + "\n")
	if hints := p.matches(); len(hints) > 0 {
		sb.WriteString("\n")
		for i, h := range hints {
			style := hintStyle
			if i == 0 {
				style = matchStyle
			}
			sb.WriteString(style.Render("  "+h) + "\n")
		}
	}
	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
