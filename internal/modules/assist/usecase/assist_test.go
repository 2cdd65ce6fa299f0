package usecase_test

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"atheneum/internal/modules/assist/domain"
	"atheneum/internal/modules/assist/dto"
	assistin "atheneum/internal/modules/assist/port/in"
	assistout "atheneum/internal/modules/assist/port/out"
	"atheneum/internal/modules/assist/service"
	"atheneum/internal/modules/assist/usecase"
	apperrors "atheneum/internal/platform/errors"
)

type fakeGenerator struct {
	calls   atomic.Int32
	release chan struct{}
	text    string
	err     error
	last    assistout.Request
	mu      sync.Mutex
}

func (g *fakeGenerator) Generate(ctx context.Context, req assistout.Request) (string, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.last = req
	g.mu.Unlock()
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.text, g.err
}

type fakeSettings struct {
	configured bool
	style      string
}

func (s fakeSettings) Configured() bool     { return s.configured }
func (s fakeSettings) SummaryStyle() string { return s.style }

type fakeNotes struct {
	mu           sync.Mutex
	summaries    []string
	explanations []string
	err          error
}

func (n *fakeNotes) SaveSummary(_ context.Context, _, chapter, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.summaries = append(n.summaries, chapter+": "+text)
	return nil
}

func (n *fakeNotes) SaveExplanation(_ context.Context, _, text, explanation string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.explanations = append(n.explanations, text+" => "+explanation)
	return "h1", nil
}

type fakeDictionary struct {
	words map[string]domain.Definition
	asked []string
}

func (d *fakeDictionary) Lookup(_ context.Context, word string) (domain.Definition, error) {
	d.asked = append(d.asked, word)
	def, ok := d.words[word]
	if !ok {
		return domain.Definition{}, apperrors.ErrNotFound
	}
	return def, nil
}

func newAssist(gen *fakeGenerator, settings fakeSettings, notes *fakeNotes) assistin.Usecase {
	return usecase.NewInteractor(service.NewAssistService(gen, settings, notes, notes, &fakeDictionary{}, nil))
}

func TestNothingIsSentWithoutCredential(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{text: "never"}
	notes := &fakeNotes{}
	uc := newAssist(gen, fakeSettings{}, notes)
	ctx := context.Background()

	if _, err := uc.Summarize(ctx, dto.SummaryInput{BookID: "b1", Title: "Dune"}); !errors.Is(err, apperrors.ErrNotConfigured) {
		t.Fatalf("summary: expected not configured, got %v", err)
	}
	if _, err := uc.Recall(ctx, dto.RecallInput{Title: "Dune"}); !errors.Is(err, apperrors.ErrNotConfigured) {
		t.Fatalf("recall: expected not configured, got %v", err)
	}
	if _, err := uc.Explain(ctx, dto.ExplainInput{SelectedText: "x"}); !errors.Is(err, apperrors.ErrNotConfigured) {
		t.Fatalf("explain: expected not configured, got %v", err)
	}
	if gen.calls.Load() != 0 || len(notes.summaries) != 0 {
		t.Fatalf("no request and no write expected")
	}
}

func TestSummaryPersistsOnlyOnSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	notes := &fakeNotes{}
	failing := &fakeGenerator{err: &apperrors.ProviderError{Status: 500, Message: "internal"}}
	uc := newAssist(failing, fakeSettings{configured: true}, notes)
	if _, err := uc.Summarize(ctx, dto.SummaryInput{BookID: "b1", ChapterName: "Ch 1"}); !errors.Is(err, apperrors.ErrGenerationFailed) {
		t.Fatalf("expected generation failure, got %v", err)
	}
	if len(notes.summaries) != 0 {
		t.Fatalf("failed summary must not be stored")
	}

	ok := &fakeGenerator{text: "  Paul arrives on Arrakis.  "}
	uc = newAssist(ok, fakeSettings{configured: true, style: "technical"}, notes)
	out, err := uc.Summarize(ctx, dto.SummaryInput{BookID: "b1", ChapterName: "Ch 1"})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if out.Text != "Paul arrives on Arrakis." || !out.Saved {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(notes.summaries) != 1 || notes.summaries[0] != "Ch 1: Paul arrives on Arrakis." {
		t.Fatalf("summary not stored: %v", notes.summaries)
	}
	if !ok.last.Grounded {
		t.Fatalf("summary requests are grounded")
	}
}

func TestSummaryStillReturnedWhenStoreFails(t *testing.T) {
	t.Parallel()
	notes := &fakeNotes{err: apperrors.Storage("put book", errors.New("disk full"))}
	uc := newAssist(&fakeGenerator{text: "recap"}, fakeSettings{configured: true}, notes)
	out, err := uc.Summarize(context.Background(), dto.SummaryInput{BookID: "b1", ChapterName: "Ch 2"})
	if err != nil || out.Text != "recap" || out.Saved {
		t.Fatalf("expected unsaved recap, got %+v %v", out, err)
	}
}

func TestConcurrentSummariesShareOneCall(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{text: "shared", release: make(chan struct{})}
	notes := &fakeNotes{}
	uc := newAssist(gen, fakeSettings{configured: true}, notes)

	var wg sync.WaitGroup
	results := make(chan dto.SummaryOutput, 3)
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := uc.Summarize(context.Background(), dto.SummaryInput{BookID: "b1", ChapterName: "Ch 3"})
			if err != nil {
				t.Errorf("summarize: %v", err)
				return
			}
			results <- out
		}()
	}
	for gen.calls.Load() == 0 {
		runtime.Gosched()
	}
	close(gen.release)
	wg.Wait()
	close(results)
	for out := range results {
		if out.Text != "shared" {
			t.Fatalf("unexpected text %q", out.Text)
		}
	}
	if notes.summaries == nil || len(notes.summaries) > int(gen.calls.Load()) {
		t.Fatalf("each remote call stores at most one summary: %d calls, %v", gen.calls.Load(), notes.summaries)
	}
}

func TestCancelledCallerLeavesSharedSummaryRunning(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{text: "shared", release: make(chan struct{})}
	notes := &fakeNotes{}
	uc := newAssist(gen, fakeSettings{configured: true}, notes)
	input := dto.SummaryInput{BookID: "b1", ChapterName: "Ch 4"}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := uc.Summarize(ctx, input)
		first <- err
	}()
	for gen.calls.Load() == 0 {
		runtime.Gosched()
	}
	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller should stop waiting, got %v", err)
	}

	second := make(chan dto.SummaryOutput, 1)
	go func() {
		out, err := uc.Summarize(context.Background(), input)
		if err != nil {
			t.Errorf("second caller: %v", err)
		}
		second <- out
	}()
	time.Sleep(50 * time.Millisecond)
	close(gen.release)

	if out := <-second; out.Text != "shared" || !out.Saved {
		t.Fatalf("second caller should get the shared summary, got %+v", out)
	}
	if n := gen.calls.Load(); n != 1 {
		t.Fatalf("the running call should be shared, got %d calls", n)
	}
}

func TestRecallRejectsUnknownLength(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{text: "x"}
	uc := newAssist(gen, fakeSettings{configured: true}, &fakeNotes{})
	if _, err := uc.Recall(context.Background(), dto.RecallInput{Title: "Emma", Length: "epic"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	out, err := uc.Recall(context.Background(), dto.RecallInput{Title: "Emma", Length: "quick"})
	if err != nil || out.Text != "x" {
		t.Fatalf("recall: %+v %v", out, err)
	}
}

func TestFollowUpAndSaveExplanation(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{text: "Because of the desert."}
	notes := &fakeNotes{}
	uc := newAssist(gen, fakeSettings{configured: true}, notes)
	ctx := context.Background()

	if _, err := uc.FollowUp(ctx, dto.FollowUpInput{ExplainInput: dto.ExplainInput{SelectedText: "spice"}}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("empty question should be rejected, got %v", err)
	}
	out, err := uc.FollowUp(ctx, dto.FollowUpInput{ExplainInput: dto.ExplainInput{SelectedText: "spice"}, PriorExplanation: "A drug.", Question: "Why?"})
	if err != nil || out.Text != "Because of the desert." {
		t.Fatalf("follow-up: %+v %v", out, err)
	}
	id, err := uc.SaveExplanation(ctx, dto.SaveExplanationInput{BookID: "b1", Text: "spice", Explanation: out.Text})
	if err != nil || id != "h1" || notes.explanations[0] != "spice => Because of the desert." {
		t.Fatalf("explanation not saved: %q %v %v", id, err, notes.explanations)
	}
}

func TestDefineCleansSelectionWithoutProvider(t *testing.T) {
	t.Parallel()
	dict := &fakeDictionary{words: map[string]domain.Definition{
		"melange": {Word: "melange", Phonetic: "/meɪˈlɑːnʒ/", Meanings: []domain.Meaning{
			{PartOfSpeech: "noun", Senses: []domain.Sense{{Text: "A mixture.", Example: "a melange of styles"}}},
		}},
	}}
	gen := &fakeGenerator{}
	uc := usecase.NewInteractor(service.NewAssistService(gen, fakeSettings{}, &fakeNotes{}, &fakeNotes{}, dict, nil))
	ctx := context.Background()

	out, err := uc.Define(ctx, dto.DefineInput{Word: ` "melange," `})
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if out.Word != "melange" || len(out.Meanings) != 1 || out.Meanings[0].Definitions[0] != "A mixture." {
		t.Fatalf("unexpected definition %+v", out)
	}
	if !strings.Contains(out.Markdown, "**noun**") || !strings.Contains(out.Markdown, "> a melange of styles") {
		t.Fatalf("markdown missing parts: %q", out.Markdown)
	}
	if dict.asked[0] != "melange" || gen.calls.Load() != 0 {
		t.Fatalf("lookup should use the cleaned word and no generator: %v", dict.asked)
	}

	if _, err := uc.Define(ctx, dto.DefineInput{Word: "?!"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("punctuation only should be rejected, got %v", err)
	}
	if _, err := uc.Define(ctx, dto.DefineInput{Word: "two words"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("phrases should be rejected, got %v", err)
	}
	if _, err := uc.Define(ctx, dto.DefineInput{Word: "spice"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown word should be not found, got %v", err)
	}
}
