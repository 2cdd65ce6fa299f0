package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	assistout "atheneum/internal/modules/assist/port/out"
	apperrors "atheneum/internal/platform/errors"
)

// OpenAICompatGenerator calls any /chat/completions endpoint. baseURL
// includes the /v1 prefix. Search grounding has no equivalent here and is
// ignored.
type OpenAICompatGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewOpenAICompatGenerator(baseURL, apiKey, model string, httpClient *http.Client) *OpenAICompatGenerator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAICompatGenerator{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimSpace(model),
		httpClient: httpClient,
	}
}

var _ assistout.Generator = (*OpenAICompatGenerator)(nil)

func (g *OpenAICompatGenerator) Generate(ctx context.Context, req assistout.Request) (string, error) {
	if g.baseURL == "" {
		return "", apperrors.ErrNotConfigured
	}
	if g.model == "" {
		return "", fmt.Errorf("%w: openai-compat model is required", apperrors.ErrNotConfigured)
	}
	payload, err := json.Marshal(oaiChatRequest{
		Model:    g.model,
		Messages: []oaiMessage{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: openai-compat request: %w", apperrors.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", providerError(resp)
	}
	var decoded oaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode chat response: %w", apperrors.ErrGenerationFailed, err)
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty response from openai-compat api", apperrors.ErrGenerationFailed)
	}
	return decoded.Choices[0].Message.Content, nil
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiChatRequest struct {
	Model    string       `json:"model"`
	Messages []oaiMessage `json:"messages"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
}
