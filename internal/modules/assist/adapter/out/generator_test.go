package out_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"atheneum/internal/modules/assist/adapter/out"
	assistout "atheneum/internal/modules/assist/port/out"
	"atheneum/internal/platform/config"
	apperrors "atheneum/internal/platform/errors"
)

func TestGeminiGeneratorSendsGroundedPrompt(t *testing.T) {
	t.Parallel()
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" || r.URL.Query().Get("key") != "secret" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"The story "},{"text":"so far."}]}}]}`)
	}))
	t.Cleanup(srv.Close)

	g := out.NewGeminiGenerator(srv.URL, "secret", "models/gemini-2.5-flash", srv.Client())
	text, err := g.Generate(context.Background(), assistout.Request{Prompt: "recap", Grounded: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "The story so far." {
		t.Fatalf("parts should be joined, got %q", text)
	}
	tools, ok := body["tools"].([]any)
	if !ok || len(tools) != 1 || !strings.Contains(mustJSON(t, tools[0]), "googleSearch") {
		t.Fatalf("grounded request should enable google search: %v", body)
	}
}

func TestGeminiGeneratorMapsErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		status int
		body   string
		want   error
		msg    string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"Quota exceeded, limit: 0"}}`, apperrors.ErrRateLimited, "limit: 0"},
		{"bad key", http.StatusBadRequest, `{"error":{"message":"API key not valid"}}`, apperrors.ErrGenerationFailed, "API key not valid"},
		{"no envelope", http.StatusBadGateway, `upstream exploded`, apperrors.ErrGenerationFailed, "502"},
		{"malformed", http.StatusOK, `{"candidates":`, apperrors.ErrGenerationFailed, "decode"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, apperrors.ErrGenerationFailed, "empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			t.Cleanup(srv.Close)
			_, err := out.NewGeminiGenerator(srv.URL, "k", "m", srv.Client()).Generate(context.Background(), assistout.Request{Prompt: "p"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("error should carry %q, got %q", tc.msg, err.Error())
			}
		})
	}
}

func TestGeminiGeneratorWithoutKeySendsNothing(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
	t.Cleanup(srv.Close)
	_, err := out.NewGeminiGenerator(srv.URL, "  ", "m", srv.Client()).Generate(context.Background(), assistout.Request{Prompt: "p"})
	if !errors.Is(err, apperrors.ErrNotConfigured) || hits.Load() != 0 {
		t.Fatalf("expected not configured without a request, got %v after %d hits", err, hits.Load())
	}
}

func TestOpenAICompatGenerator(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" || r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected request %s %q", r.URL.Path, r.Header.Get("Authorization"))
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama" || len(req.Messages) != 1 || req.Messages[0].Content != "explain" {
			t.Errorf("unexpected body %+v", req)
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"It means hope."}}]}`)
	}))
	t.Cleanup(srv.Close)

	text, err := out.NewOpenAICompatGenerator(srv.URL+"/v1/", "tok", "llama", srv.Client()).Generate(context.Background(), assistout.Request{Prompt: "explain"})
	if err != nil || text != "It means hope." {
		t.Fatalf("unexpected result %q %v", text, err)
	}
}

type staticSettings config.Settings

func (s staticSettings) Settings() config.Settings { return config.Settings(s) }

func TestConfiguredGeneratorFollowsProvider(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/chat/completions") {
			_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"compat"}}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"gemini"}]}}]}`)
	}))
	t.Cleanup(srv.Close)

	gemini := out.NewConfiguredGenerator(staticSettings{Provider: config.ProviderGemini, GeminiAPIKey: "k", Model: "m", BaseURL: srv.URL}, srv.Client())
	if text, err := gemini.Generate(context.Background(), assistout.Request{Prompt: "p"}); err != nil || text != "gemini" {
		t.Fatalf("gemini route: %q %v", text, err)
	}
	compat := out.NewConfiguredGenerator(staticSettings{Provider: config.ProviderOpenAICompat, Model: "m", BaseURL: srv.URL}, srv.Client())
	if text, err := compat.Generate(context.Background(), assistout.Request{Prompt: "p"}); err != nil || text != "compat" {
		t.Fatalf("compat route: %q %v", text, err)
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestDictionaryClientParsesFirstEntry(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sietch":
			_, _ = io.WriteString(w, `[{"word":"sietch","phonetics":[{"text":""},{"text":"/siːtʃ/"}],
				"meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"A Fremen community.","example":"the sietch at Tabr"}]}]}]`)
		case "/busy":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"title":"No Definitions Found"}`)
		}
	}))
	t.Cleanup(srv.Close)

	c := out.NewDictionaryClient(srv.URL, srv.Client())
	def, err := c.Lookup(context.Background(), "Sietch")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if def.Word != "sietch" || def.Phonetic != "/siːtʃ/" {
		t.Fatalf("unexpected entry %+v", def)
	}
	if len(def.Meanings) != 1 || def.Meanings[0].Senses[0].Example != "the sietch at Tabr" {
		t.Fatalf("meanings not mapped: %+v", def.Meanings)
	}
	if _, err := c.Lookup(context.Background(), "kwisatz"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := c.Lookup(context.Background(), "busy"); !errors.Is(err, apperrors.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
}
