package out

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"atheneum/internal/modules/assist/domain"
	assistout "atheneum/internal/modules/assist/port/out"
	apperrors "atheneum/internal/platform/errors"
)

const DefaultDictionaryBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// DictionaryClient looks words up in the free dictionaryapi.dev service.
// It needs no credential.
type DictionaryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewDictionaryClient(baseURL string, httpClient *http.Client) *DictionaryClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultDictionaryBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DictionaryClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

var _ assistout.Dictionary = (*DictionaryClient)(nil)

func (c *DictionaryClient) Lookup(ctx context.Context, word string) (domain.Definition, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(strings.ToLower(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("build dictionary request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Definition{}, ctx.Err()
		}
		return domain.Definition{}, fmt.Errorf("%w: %w", apperrors.ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.Definition{}, fmt.Errorf("%w: %q is not in the dictionary", apperrors.ErrNotFound, word)
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.Definition{}, apperrors.ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return domain.Definition{}, fmt.Errorf("%w: status %d", apperrors.ErrLookupFailed, resp.StatusCode)
	}

	var entries []dictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return domain.Definition{}, fmt.Errorf("%w: decode response: %w", apperrors.ErrLookupFailed, err)
	}
	if len(entries) == 0 {
		return domain.Definition{}, fmt.Errorf("%w: %q is not in the dictionary", apperrors.ErrNotFound, word)
	}
	return entries[0].toDomain(), nil
}

type dictionaryEntry struct {
	Word      string `json:"word"`
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text string `json:"text"`
	} `json:"phonetics"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
			Example    string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

func (e dictionaryEntry) toDomain() domain.Definition {
	d := domain.Definition{Word: e.Word, Phonetic: e.Phonetic}
	if d.Phonetic == "" {
		for _, p := range e.Phonetics {
			if p.Text != "" {
				d.Phonetic = p.Text
				break
			}
		}
	}
	for _, m := range e.Meanings {
		meaning := domain.Meaning{PartOfSpeech: m.PartOfSpeech}
		for _, def := range m.Definitions {
			meaning.Senses = append(meaning.Senses, domain.Sense{Text: def.Definition, Example: def.Example})
		}
		d.Meanings = append(d.Meanings, meaning)
	}
	return d
}
