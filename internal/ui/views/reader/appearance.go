package reader

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	readerdto "atheneum/internal/modules/reader/dto"
	"atheneum/internal/platform/config"
	"atheneum/internal/ui/theme"
)

const fontStep = 10

var (
	sepiaPaper = lipgloss.Color("#f4ecd8")
	sepiaInk   = lipgloss.Color("#5b4636")
	lightPaper = lipgloss.Color("#eff1f5")
	lightInk   = lipgloss.Color("#4c4f69")
)

// textStyle colours the passage for the reading theme.
func textStyle(look config.Appearance) lipgloss.Style {
	switch look.Theme {
	case config.ThemeSepia:
		return lipgloss.NewStyle().Foreground(sepiaInk).Background(sepiaPaper)
	case config.ThemeLight:
		return lipgloss.NewStyle().Foreground(lightInk).Background(lightPaper)
	}
	return lipgloss.NewStyle().Foreground(theme.Text)
}

func markdownStyle(look config.Appearance) string {
	if look.Theme == config.ThemeDark {
		return styles.DarkStyle
	}
	return styles.LightStyle
}

// columnWidth narrows the text column as the font size grows, the way a
// larger font fits fewer characters on a line.
func columnWidth(termWidth, fontSize int) int {
	if fontSize <= 0 {
		fontSize = config.DefaultFontSize
	}
	limit := max(20, termWidth-4)
	return max(20, min(limit, 80*config.DefaultFontSize/fontSize))
}

func (m *Model) applyAppearance() {
	m.markdown = newMarkdown(min(72, m.width-10), markdownStyle(m.look))
	m.renderPassage()
}

func (m Model) openAppearance() (Model, tea.Cmd) {
	m.modal = modalState{kind: modalAppearance, title: "Appearance"}
	return m, m.chromeCmd(func(ctx context.Context) readerdto.ChromeOutput {
		return m.ports.Reader.TogglePanel(ctx, "appearance")
	})
}

func (m Model) updateAppearance(key string) (Model, tea.Cmd) {
	look := m.look
	switch key {
	case "1", "2", "3":
		look.Theme = config.Themes[key[0]-'1']
	case "+", "=":
		look.FontSize = min(config.MaxFontSize, look.FontSize+fontStep)
	case "-":
		look.FontSize = max(config.MinFontSize, look.FontSize-fontStep)
	case "p":
		if look.Flow == config.FlowScrolled {
			look.Flow = config.FlowPaginated
		} else {
			look.Flow = config.FlowScrolled
		}
	case "esc", "q", "a":
		m.modal = modalState{}
		return m, m.chromeCmd(m.ports.Reader.ClosePanel)
	default:
		return m, nil
	}
	if look == m.look {
		return m, nil
	}
	m.look = look
	m.applyAppearance()
	return m, m.saveAppearanceCmd(look)
}

func (m Model) saveAppearanceCmd(look config.Appearance) tea.Cmd {
	if m.ports.Appearance == nil {
		return nil
	}
	return func() tea.Msg {
		if err := m.ports.Appearance.SetAppearance(look); err != nil {
			return StatusMsg{Text: "appearance not saved: " + err.Error()}
		}
		return nil
	}
}

func (m Model) appearanceView() string {
	var sb strings.Builder
	sb.WriteString("Theme     ")
	for i, t := range config.Themes {
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == m.look.Theme {
			sb.WriteString(theme.Hot.Render("["+label+"]") + " ")
		} else {
			sb.WriteString(theme.Muted.Render(" "+label+" ") + " ")
		}
	}
	sb.WriteString(fmt.Sprintf("\nFont size %d%%  (column %d)\n", m.look.FontSize, columnWidth(m.width, m.look.FontSize)))
	sb.WriteString("Flow      " + m.look.Flow + "\n\n")
	sb.WriteString(theme.Muted.Render("1-3 theme  +/- size  p flow  esc close"))
	return sb.String()
}
