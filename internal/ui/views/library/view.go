package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	libdto "atheneum/internal/modules/library/dto"
	streakdto "atheneum/internal/modules/streak/dto"
	"atheneum/internal/ui/theme"
)

type Port interface {
	ListBooks(ctx context.Context) ([]libdto.BookOutput, error)
	GetBook(ctx context.Context, id string) (libdto.BookDetailOutput, error)
	Stats(ctx context.Context) (libdto.StatsOutput, error)
	Streak(ctx context.Context) (streakdto.StreakOutput, error)
}

type BooksLoadedMsg struct {
	Books  []libdto.BookOutput
	Stats  libdto.StatsOutput
	Streak streakdto.StreakOutput
	Err    error
}

type DetailLoadedMsg struct {
	Detail libdto.BookDetailOutput
	Err    error
}

type bookItem struct {
	book libdto.BookOutput
}

func (i bookItem) Title() string { return i.book.Title }
func (i bookItem) Description() string {
	desc := fmt.Sprintf("%s  %.0f%%", i.book.Kind, i.book.Percent)
	if i.book.Author != "" {
		desc = i.book.Author + "  " + desc
	}
	return desc
}
func (i bookItem) FilterValue() string { return i.book.Title + " " + i.book.Author }

type Model struct {
	port    Port
	list    list.Model
	detail  libdto.BookDetailOutput
	stats   libdto.StatsOutput
	streak  streakdto.StreakOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Library"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, preview: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload refreshes books, streak and stats, e.g. after leaving the reader.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		books, err := m.port.ListBooks(ctx)
		if err != nil {
			return BooksLoadedMsg{Err: err}
		}
		stats, err := m.port.Stats(ctx)
		if err != nil {
			return BooksLoadedMsg{Err: err}
		}
		streak, err := m.port.Streak(ctx)
		return BooksLoadedMsg{Books: books, Stats: stats, Streak: streak, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case BooksLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.stats, m.streak = msg.Stats, msg.Streak
		items := make([]list.Item, len(msg.Books))
		for i, b := range msg.Books {
			items[i] = bookItem{book: b}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if id, ok := m.SelectedBookID(); ok {
			cmds = append(cmds, m.loadDetailCmd(id))
		} else if len(msg.Books) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Books[0].ID))
		} else {
			m.detail = libdto.BookDetailOutput{}
			m.preview.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Detail
			m.preview.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(bookItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.book.ID))
			}
		}
		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading library…")
	}
	if m.err != nil {
		return theme.Hot.Render("Library unavailable: " + m.err.Error())
	}

	header := m.renderDashboard()
	bodyH := m.height - lipgloss.Height(header)
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().Width(listW).Height(bodyH).Render(m.list.View())
	detailPane := theme.Pane.Padding(0, 1).
		Width(detailW - 2).
		Height(bodyH - 2).
		Render(m.preview.View())

	return lipgloss.JoinVertical(lipgloss.Left, header,
		lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane))
}

func (m Model) SelectedBookID() (string, bool) {
	if item, ok := m.list.SelectedItem().(bookItem); ok {
		return item.book.ID, true
	}
	return "", false
}

func (m Model) SelectedBookTitle() string {
	if item, ok := m.list.SelectedItem().(bookItem); ok {
		return item.book.Title
	}
	return ""
}

// Filtering reports whether the list's search filter is active, in which
// case the app must not treat keys as shortcuts.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) resize() {
	bodyH := m.height - 2
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, bodyH)
	m.preview.Width = detailW - 4
	m.preview.Height = bodyH - 2
}

func (m Model) renderDashboard() string {
	flame := theme.Muted.Render(fmt.Sprintf("streak %d", m.streak.CurrentStreak))
	if m.streak.ReadToday {
		flame = theme.Hot.Render(fmt.Sprintf("streak %d", m.streak.CurrentStreak))
	}
	parts := []string{
		flame,
		theme.Muted.Render(fmt.Sprintf("best %d", m.streak.MaxStreak)),
		theme.Muted.Render(fmt.Sprintf("%d books", m.stats.TotalBooks)),
		theme.Muted.Render(fmt.Sprintf("%d pages", m.stats.TotalPages)),
		theme.Muted.Render(formatDuration(time.Duration(m.stats.TotalDurationMs) * time.Millisecond)),
	}
	if m.stats.PagesPerMinute > 0 {
		parts = append(parts, theme.Muted.Render(fmt.Sprintf("%.1f pages/min", m.stats.PagesPerMinute)))
	}
	return strings.Join(parts, theme.Muted.Render("  ·  ")) + "\n"
}

func (m Model) renderDetail() string {
	d := m.detail
	if d.ID == "" {
		return theme.Muted.Render("No books yet. Add one with  :book:add <path>")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Title) + "\n")
	if d.Author != "" {
		sb.WriteString(theme.Muted.Render(d.Author) + "\n")
	}
	sb.WriteString("\n")
	row := func(label, value string) {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%-9s", label)) + value + "\n")
	}
	row("kind", d.Kind)
	row("progress", progressBar(d.Percent, 24)+fmt.Sprintf(" %.1f%%", d.Percent))
	if d.TotalPages > 0 {
		row("pages", fmt.Sprintf("%d / %d", d.CurrentPage, d.TotalPages))
	}
	if d.Genre != "" {
		row("genre", d.Genre)
	}
	if !d.LastReadAt.IsZero() {
		row("last read", d.LastReadAt.Format("Jan 2 2006 15:04"))
	}
	row("sessions", fmt.Sprintf("%d", d.SessionCount))
	if d.FilePath != "" {
		row("file", d.FilePath)
	}
	if n := len(d.Sessions); n > 0 {
		sb.WriteString("\n" + theme.Title.Render("Recent sessions") + "\n")
		for i := n - 1; i >= 0 && i >= n-5; i-- {
			s := d.Sessions[i]
			sb.WriteString(fmt.Sprintf("  %s  %d pages  %s\n",
				s.OccurredAt.Format("Jan 2"), s.PagesRead,
				formatDuration(time.Duration(s.DurationMs)*time.Millisecond)))
		}
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: read  n: notes  /: filter"))
	return sb.String()
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(width, filled))
	return theme.Good.Render(strings.Repeat("█", filled)) + theme.Muted.Render(strings.Repeat("░", width-filled))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.GetBook(context.Background(), id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}
