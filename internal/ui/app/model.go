package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	libdto "atheneum/internal/modules/library/dto"
	streakdto "atheneum/internal/modules/streak/dto"
	"atheneum/internal/ui/components"
	"atheneum/internal/ui/theme"
	libraryview "atheneum/internal/ui/views/library"
	notesview "atheneum/internal/ui/views/notes"
	readerview "atheneum/internal/ui/views/reader"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type LibraryPort interface {
	AddBook(ctx context.Context, kind, title, author, path string, totalPages int) (libdto.BookOutput, error)
	ListBooks(ctx context.Context) ([]libdto.BookOutput, error)
	GetBook(ctx context.Context, bookID string) (libdto.BookDetailOutput, error)
	SetGenre(ctx context.Context, bookID, genre string) (libdto.BookOutput, error)
	Stats(ctx context.Context) (libdto.StatsOutput, error)
	ListHighlights(ctx context.Context, bookID string) ([]libdto.HighlightOutput, error)
	DeleteHighlight(ctx context.Context, bookID, highlightID string) error
	ListSummaries(ctx context.Context, bookID string) ([]libdto.SummaryOutput, error)
	DeleteSummary(ctx context.Context, bookID, summaryID string) error
	ListPredictions(ctx context.Context, bookID string) ([]libdto.PredictionOutput, error)
	ExportNotes(ctx context.Context, bookID string) (libdto.ExportOutput, error)
}

type StreakPort interface {
	Show(ctx context.Context) (streakdto.StreakOutput, error)
}

type SettingsPort interface {
	SetAPIKey(key string) error
	SetSummaryStyle(style string) error
}

// Ports is everything the root model is wired to.
type Ports struct {
	Library  LibraryPort
	Streak   StreakPort
	Settings SettingsPort
	Reading  readerview.Ports
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabLibrary tabID = iota
	tabReader
	tabNotes
	tabCount
)

var tabLabels = [tabCount]string{"Library", "Reader", "Notes"}

// ─── async messages ───────────────────────────────────────────────────────────

type statusMsg struct {
	text   string
	reload bool
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Enter   key.Binding
	Notes   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read")),
		Notes:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notes")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Enter, k.Notes},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the global help
// overlay and the command palette. While a book is attached and the Reader
// tab is showing, keys go to the reading screen.
type Model struct {
	library  LibraryPort
	settings SettingsPort

	libView   libraryview.Model
	readView  readerview.Model
	notesView notesview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(ports Ports) Model {
	return Model{
		library:   ports.Library,
		settings:  ports.Settings,
		libView:   libraryview.New(libraryPortBridge{lib: ports.Library, streak: ports.Streak}),
		readView:  readerview.New(ports.Reading),
		notesView: notesview.New(notesPortBridge{p: ports.Library}),
		activeTab: tabLibrary,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return m.libView.Init()
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts all input while open.
	if _, isKey := msg.(tea.KeyMsg); isKey && m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case statusMsg:
		m.status = msg.text
		if msg.reload {
			return m, m.libView.Reload()
		}
		return m, nil

	case readerview.OpenedMsg:
		if msg.Err != nil {
			m.status = "open failed: " + msg.Err.Error()
			m.activeTab = tabLibrary
			return m, nil
		}
		m.status = "reading " + msg.Title
		m.activeTab = tabReader
		return m, nil

	case readerview.ClosedMsg:
		m.status = "ready"
		m.activeTab = tabLibrary
		return m, m.libView.Reload()

	case readerview.StatusMsg:
		m.status = msg.Text
		return m, nil

	case notesview.StatusMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		} else {
			m.status = msg.Text
		}
		return m, nil

	case notesview.LoadedMsg:
		var cmd tea.Cmd
		m.notesView, cmd = m.notesView.Update(msg)
		return m, cmd

	case libraryview.BooksLoadedMsg, libraryview.DetailLoadedMsg:
		var cmd tea.Cmd
		m.libView, cmd = m.libView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	// The reading screen sees its own messages whichever tab is showing.
	var readCmd, tabCmd tea.Cmd
	m.readView, readCmd = m.readView.Update(msg)
	switch m.activeTab {
	case tabLibrary:
		m.libView, tabCmd = m.libView.Update(msg)
	case tabNotes:
		m.notesView, tabCmd = m.notesView.Update(msg)
	}
	return m, tea.Batch(readCmd, tabCmd)
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}
	if m.activeTab == tabReader && m.readView.Attached() {
		if msg.String() == ":" && !m.readView.TypingText() {
			return m, m.palette.Open()
		}
		var cmd tea.Cmd
		m.readView, cmd = m.readView.Update(msg)
		return m, cmd
	}

	if !m.subViewFiltering() {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "enter":
			if m.activeTab == tabLibrary {
				if id, ok := m.libView.SelectedBookID(); ok {
					m.activeTab = tabReader
					m.status = "opening " + m.libView.SelectedBookTitle()
					return m, m.readView.Open(id)
				}
			}
		case "n":
			if m.activeTab == tabLibrary {
				if id, ok := m.libView.SelectedBookID(); ok {
					m.activeTab = tabNotes
					return m, m.notesView.Show(id, m.libView.SelectedBookTitle())
				}
			}
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabLibrary:
		m.libView, cmd = m.libView.Update(msg)
	case tabNotes:
		m.notesView, cmd = m.notesView.Update(msg)
	}
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(1, m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar))

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabLibrary:
		return m.libView.View()
	case tabReader:
		return m.readView.View()
	case tabNotes:
		return m.notesView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "atheneum  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	if m.activeTab == tabReader && m.readView.Attached() {
		right = theme.Muted.Render(":::palette  q:back to library")
	}
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	name, args := parts[0], parts[1:]
	selected, _ := m.libView.SelectedBookID()

	switch name {
	case "book:add":
		if len(args) == 0 {
			m.status = "usage: book:add <path> [title]"
			return m, nil
		}
		path, title := args[0], strings.Join(args[1:], " ")
		return m, func() tea.Msg {
			book, err := m.library.AddBook(context.Background(), "", title, "", path, 0)
			if err != nil {
				return statusMsg{text: "add failed: " + err.Error()}
			}
			return statusMsg{text: "added " + book.Title, reload: true}
		}

	case "book:genre":
		if len(args) != 1 {
			m.status = "usage: book:genre <fiction|nonfiction>"
			return m, nil
		}
		if selected == "" {
			m.status = "no book selected"
			return m, nil
		}
		return m, func() tea.Msg {
			book, err := m.library.SetGenre(context.Background(), selected, args[0])
			if err != nil {
				return statusMsg{text: "genre: " + err.Error()}
			}
			return statusMsg{text: fmt.Sprintf("%s is %s", book.Title, book.Genre), reload: true}
		}

	case "notes:export":
		if selected == "" {
			m.status = "no book selected"
			return m, nil
		}
		return m, func() tea.Msg {
			out, err := m.library.ExportNotes(context.Background(), selected)
			if err != nil {
				return statusMsg{text: "export failed: " + err.Error()}
			}
			return statusMsg{text: "notes exported to " + out.Path}
		}

	case "settings:key":
		if len(args) != 1 {
			m.status = "usage: settings:key <api-key>"
			return m, nil
		}
		return m, func() tea.Msg {
			if err := m.settings.SetAPIKey(args[0]); err != nil {
				return statusMsg{text: "settings: " + err.Error()}
			}
			return statusMsg{text: "API key saved"}
		}

	case "settings:style":
		if len(args) != 1 {
			m.status = "usage: settings:style <fiction|non-fiction|technical>"
			return m, nil
		}
		return m, func() tea.Msg {
			if err := m.settings.SetSummaryStyle(args[0]); err != nil {
				return statusMsg{text: "settings: " + err.Error()}
			}
			return statusMsg{text: "summary style set to " + args[0]}
		}
	}

	var cmd tea.Cmd
	m.readView, cmd = m.readView.RunCommand(name, args)
	if m.readView.Attached() {
		m.activeTab = tabReader
	}
	return m, cmd
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabLibrary:
		return m.libView.Filtering()
	case tabNotes:
		return m.notesView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.libView, _ = m.libView.Update(sz)
	m.readView, _ = m.readView.Update(sz)
	m.notesView, _ = m.notesView.Update(sz)
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view.

type libraryPortBridge struct {
	lib    LibraryPort
	streak StreakPort
}

func (b libraryPortBridge) ListBooks(ctx context.Context) ([]libdto.BookOutput, error) {
	return b.lib.ListBooks(ctx)
}
func (b libraryPortBridge) GetBook(ctx context.Context, id string) (libdto.BookDetailOutput, error) {
	return b.lib.GetBook(ctx, id)
}
func (b libraryPortBridge) Stats(ctx context.Context) (libdto.StatsOutput, error) {
	return b.lib.Stats(ctx)
}
func (b libraryPortBridge) Streak(ctx context.Context) (streakdto.StreakOutput, error) {
	return b.streak.Show(ctx)
}

type notesPortBridge struct{ p LibraryPort }

func (b notesPortBridge) ListHighlights(ctx context.Context, bookID string) ([]libdto.HighlightOutput, error) {
	return b.p.ListHighlights(ctx, bookID)
}
func (b notesPortBridge) ListSummaries(ctx context.Context, bookID string) ([]libdto.SummaryOutput, error) {
	return b.p.ListSummaries(ctx, bookID)
}
func (b notesPortBridge) ListPredictions(ctx context.Context, bookID string) ([]libdto.PredictionOutput, error) {
	return b.p.ListPredictions(ctx, bookID)
}
func (b notesPortBridge) DeleteHighlight(ctx context.Context, bookID, id string) error {
	return b.p.DeleteHighlight(ctx, bookID, id)
}
func (b notesPortBridge) DeleteSummary(ctx context.Context, bookID, id string) error {
	return b.p.DeleteSummary(ctx, bookID, id)
}
func (b notesPortBridge) ExportNotes(ctx context.Context, bookID string) (libdto.ExportOutput, error) {
	return b.p.ExportNotes(ctx, bookID)
}
