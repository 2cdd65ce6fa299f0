package reader_test

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	assistdto "atheneum/internal/modules/assist/dto"
	companiondto "atheneum/internal/modules/companion/dto"
	readerdomain "atheneum/internal/modules/reader/domain"
	readerdto "atheneum/internal/modules/reader/dto"
	"atheneum/internal/platform/config"
	readerview "atheneum/internal/ui/views/reader"
)

type fakeReader struct {
	readerview.Port

	events chan readerdto.LocationEvent

	mu      sync.Mutex
	handled []int
}

func (f *fakeReader) Open(_ context.Context, bookID string) (readerdto.OpenOutput, error) {
	return readerdto.OpenOutput{Generation: 1, BookID: bookID, Title: "Dune", Events: f.events}, nil
}

func (f *fakeReader) Handle(_ context.Context, _ uint64, ev readerdto.LocationEvent) (readerdto.LocationOutput, error) {
	loc := ev.(readerdomain.EbookLocation)
	if loc.SectionIndex == 0 {
		// The first event is slower to reconcile than the second.
		time.Sleep(30 * time.Millisecond)
	}
	f.mu.Lock()
	f.handled = append(f.handled, loc.SectionIndex)
	f.mu.Unlock()
	return readerdto.LocationOutput{BookID: "b1", Section: loc.SectionIndex, Percentage: loc.Fraction}, nil
}

func (f *fakeReader) Passage(context.Context) (readerdto.PassageOutput, error) {
	return readerdto.PassageOutput{}, nil
}

func (f *fakeReader) Interact(context.Context) error { return nil }

func (f *fakeReader) TogglePanel(context.Context, string) readerdto.ChromeOutput {
	return readerdto.ChromeOutput{ControlsVisible: true}
}

func (f *fakeReader) ClosePanel(context.Context) readerdto.ChromeOutput {
	return readerdto.ChromeOutput{ControlsVisible: true}
}

func (f *fakeReader) order() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.handled...)
}

type fakeCompanion struct {
	readerview.CompanionPort
}

func (fakeCompanion) Open(_ context.Context, bookID string) (companiondto.FlowOutput, error) {
	return companiondto.FlowOutput{BookID: bookID, State: "reading"}, nil
}

type fakeAppearance struct {
	mu    sync.Mutex
	saved []config.Appearance
}

func (f *fakeAppearance) Appearance() config.Appearance { return config.DefaultAppearance() }

func (f *fakeAppearance) SetAppearance(a config.Appearance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, a)
	return nil
}

type fakeAssist struct {
	readerview.AssistPort

	mu    sync.Mutex
	words []string
}

func (f *fakeAssist) Define(_ context.Context, word string) (assistdto.DefinitionOutput, error) {
	f.mu.Lock()
	f.words = append(f.words, word)
	f.mu.Unlock()
	return assistdto.DefinitionOutput{Word: word, Markdown: "**" + word + "**"}, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func openBook(t *testing.T, ports readerview.Ports) readerview.Model {
	t.Helper()
	events := make(chan readerdto.LocationEvent)
	close(events)
	reader := &fakeReader{events: events}
	ports.Reader = reader
	ports.Companion = fakeCompanion{}
	m := readerview.New(ports)
	cmd := m.Open("b1")
	m = drive(t, m, cmd)
	if !m.Attached() {
		t.Fatalf("book should be attached")
	}
	return m
}

// drive runs commands concurrently and feeds their messages back into
// Update one at a time, until no command is outstanding.
func drive(t *testing.T, m readerview.Model, cmd tea.Cmd) readerview.Model {
	t.Helper()
	msgs := make(chan tea.Msg, 64)
	inflight := 0
	launch := func(c tea.Cmd) {
		if c == nil {
			return
		}
		inflight++
		go func() { msgs <- c() }()
	}
	launch(cmd)
	deadline := time.After(5 * time.Second)
	for inflight > 0 {
		select {
		case msg := <-msgs:
			inflight--
			switch msg := msg.(type) {
			case nil:
			case tea.BatchMsg:
				for _, c := range msg {
					launch(c)
				}
			default:
				var next tea.Cmd
				m, next = m.Update(msg)
				launch(next)
			}
		case <-deadline:
			t.Fatalf("commands still running after 5s")
		}
	}
	return m
}

func TestRendererEventsAreReconciledInEmissionOrder(t *testing.T) {
	t.Parallel()

	events := make(chan readerdto.LocationEvent, 2)
	events <- readerdomain.EbookLocation{CFI: "s0", Fraction: 0.5, SectionIndex: 0, SectionTotal: 2}
	events <- readerdomain.EbookLocation{CFI: "s1", Fraction: 1, SectionIndex: 1, SectionTotal: 2}
	close(events)

	reader := &fakeReader{events: events}
	m := readerview.New(readerview.Ports{Reader: reader, Companion: fakeCompanion{}})
	cmd := m.Open("b1")
	drive(t, m, cmd)

	got := reader.order()
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("handled order = %v, want [0 1]", got)
	}
}

func TestAppearancePanelSavesThemeAndFlow(t *testing.T) {
	t.Parallel()

	store := &fakeAppearance{}
	m := openBook(t, readerview.Ports{Appearance: store})

	m, _ = m.Update(key("a"))
	var cmd tea.Cmd
	m, cmd = m.Update(key("2"))
	m = drive(t, m, cmd)
	m, cmd = m.Update(key("p"))
	m = drive(t, m, cmd)
	m, cmd = m.Update(key("esc"))
	drive(t, m, cmd)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.saved) != 2 {
		t.Fatalf("saved %d times, want 2", len(store.saved))
	}
	last := store.saved[1]
	if last.Theme != config.ThemeSepia || last.Flow != config.FlowScrolled || last.FontSize != config.DefaultFontSize {
		t.Fatalf("saved appearance = %+v", last)
	}
}

func TestDefineLooksUpTypedWord(t *testing.T) {
	t.Parallel()

	assist := &fakeAssist{}
	m := openBook(t, readerview.Ports{Assist: assist})

	m, _ = m.Update(key("d"))
	if !m.TypingText() {
		t.Fatalf("define should focus the word prompt")
	}
	for _, r := range "sietch" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd := m.Update(key("enter"))
	m = drive(t, m, cmd)

	assist.mu.Lock()
	words := append([]string(nil), assist.words...)
	assist.mu.Unlock()
	if len(words) != 1 || words[0] != "sietch" {
		t.Fatalf("looked up %v, want [sietch]", words)
	}
	if m.TypingText() {
		t.Fatalf("prompt should release the keyboard once the lookup starts")
	}
}
