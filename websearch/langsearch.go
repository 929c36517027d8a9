// Package websearch provides the external web-search client used to collect
// background context for prompts.
package websearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
)

// DefaultLangSearchURL is the production LangSearch web-search endpoint.
const DefaultLangSearchURL = "https://api.langsearch.com/v1/web-search"

// The search parameters are fixed: no freshness restriction, summaries
// enabled, five results.
const (
	searchFreshness = "noLimit"
	searchCount     = 5
)

// LangSearch is a client for the LangSearch web-search API. It implements the
// WebSearcher interface.
type LangSearch struct {
	url    string
	apiKey string

	client *http.Client
	logger *slog.Logger
}

// NewLangSearch creates a new LangSearch client authenticating with the given
// API key. An empty url falls back to the production endpoint.
func NewLangSearch(url, apiKey string, logger *slog.Logger) LangSearch {
	if url == "" {
		url = DefaultLangSearchURL
	}

	return LangSearch{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger.With(slog.String("module", "websearch")),
	}
}

// Search issues a web search for the query and returns the result summaries.
// A non-200 response is returned as an error; the caller decides whether to
// degrade gracefully.
func (l LangSearch) Search(query string) ([]rfprag.WebResult, error) {
	reqBody := struct {
		Query     string `json:"query"`
		Freshness string `json:"freshness"`
		Summary   bool   `json:"summary"`
		Count     int    `json:"count"`
	}{
		Query:     query,
		Freshness: searchFreshness,
		Summary:   true,
		Count:     searchCount,
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, l.url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Results []struct {
			Summary string `json:"summary"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]rfprag.WebResult, len(parsed.Results))
	for i, result := range parsed.Results {
		results[i] = rfprag.WebResult{Summary: result.Summary}
	}

	l.logger.Info("Web search completed", "query", query, "results", len(results))

	return results, nil
}
