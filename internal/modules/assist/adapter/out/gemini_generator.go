package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	assistout "atheneum/internal/modules/assist/port/out"
	apperrors "atheneum/internal/platform/errors"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiGenerator calls the Gemini generateContent endpoint.
type GeminiGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGeminiGenerator(baseURL, apiKey, model string, httpClient *http.Client) *GeminiGenerator {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiGenerator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimPrefix(strings.TrimSpace(model), "models/"),
		httpClient: httpClient,
	}
}

var _ assistout.Generator = (*GeminiGenerator)(nil)

func (g *GeminiGenerator) Generate(ctx context.Context, req assistout.Request) (string, error) {
	if g.apiKey == "" {
		return "", apperrors.ErrNotConfigured
	}
	body := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}}}
	if req.Grounded {
		body.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: gemini request: %w", apperrors.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", providerError(resp)
	}
	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode gemini response: %w", apperrors.ErrGenerationFailed, err)
	}
	if len(decoded.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty response from gemini", apperrors.ErrGenerationFailed)
	}
	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: empty response from gemini", apperrors.ErrGenerationFailed)
	}
	return text.String(), nil
}

// providerError reads the provider's error envelope, which Gemini and
// OpenAI-compatible servers share.
func providerError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := resp.Status
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}
	return &apperrors.ProviderError{Status: resp.StatusCode, Message: message}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}
