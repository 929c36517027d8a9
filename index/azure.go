// Package index provides searchers over the separately indexed proposal
// corpus: the production Azure Cognitive Search index and a local chromem
// backend for offline use.
package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
)

const searchAPIVersion = "2023-10-01-Preview"

// DefaultIndexName is the corpus index queried by default.
const DefaultIndexName = "basic"

// searchableFields are the index fields declared searchable in the index
// schema. Requested fields outside this set are silently dropped; if none
// remain the search is rejected.
var searchableFields = []string{"content"}

// AzureSearch is a client for an Azure Cognitive Search index. It implements
// the IndexSearcher interface.
type AzureSearch struct {
	serviceURL string
	indexName  string
	apiKey     string

	client *http.Client
	logger *slog.Logger
}

// NewAzureSearch creates a new client for the given search service URL and
// API key. An empty indexName falls back to DefaultIndexName.
func NewAzureSearch(serviceURL, indexName, apiKey string, logger *slog.Logger) AzureSearch {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	return AzureSearch{
		serviceURL: strings.TrimSuffix(serviceURL, "/"),
		indexName:  indexName,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With(slog.String("module", "azuresearch")),
	}
}

// Search queries the index for the given keyword over the requested fields.
// Fields not declared searchable by the schema are dropped; if none remain,
// rfprag.ErrNoSearchableFields is returned before any request is made.
func (a AzureSearch) Search(query string, searchFields []string, top int) ([]rfprag.IndexDocument, error) {
	validFields := filterSearchable(searchFields)
	if len(validFields) == 0 {
		return nil, rfprag.ErrNoSearchableFields
	}

	reqBody := struct {
		Search       string `json:"search"`
		SearchFields string `json:"searchFields"`
		Top          int    `json:"top"`
	}{
		Search:       query,
		SearchFields: strings.Join(validFields, ","),
		Top:          top,
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", a.serviceURL, a.indexName, searchAPIVersion)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search failed with status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Value []struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			Author  string `json:"author"`
			Created string `json:"created"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	docs := make([]rfprag.IndexDocument, len(parsed.Value))
	for i, doc := range parsed.Value {
		docs[i] = rfprag.IndexDocument{
			Title:   doc.Title,
			Content: doc.Content,
			Author:  doc.Author,
			Created: doc.Created,
		}
	}

	a.logger.Info("Index search completed", "query", query, "results", len(docs))

	return docs, nil
}

func filterSearchable(fields []string) []string {
	valid := []string{}
	for _, field := range fields {
		if slices.Contains(searchableFields, field) {
			valid = append(valid, field)
		}
	}
	return valid
}
