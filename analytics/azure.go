// Package analytics provides the text-analytics client used for key-phrase
// extraction and extractive summarization.
package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
)

const apiVersion = "2023-04-01"

// Azure is a client for the Azure Language service REST API. It implements
// the TextAnalyzer interface. Key phrases use the synchronous analyze-text
// endpoint; extractive summarization goes through the asynchronous jobs
// endpoint and polls until the job completes.
type Azure struct {
	endpoint string
	apiKey   string
	language string

	pollInterval time.Duration
	pollTimeout  time.Duration

	client *http.Client
	logger *slog.Logger
}

// NewAzure creates a new Azure Language client for the given endpoint and key.
// The language parameter sets the document language hint; an empty value
// defaults to Korean, the primary language of the RFP corpus.
func NewAzure(endpoint, apiKey, language string, logger *slog.Logger) Azure {
	if language == "" {
		language = "ko"
	}

	return Azure{
		endpoint:     endpoint,
		apiKey:       apiKey,
		language:     language,
		pollInterval: 2 * time.Second,
		pollTimeout:  2 * time.Minute,
		client:       &http.Client{Timeout: 30 * time.Second},
		logger:       logger.With(slog.String("module", "analytics")),
	}
}

type inputDocument struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

type analysisInput struct {
	Documents []inputDocument `json:"documents"`
}

type documentError struct {
	ID    string `json:"id"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// KeyPhrases extracts key phrases for each input text. Results are returned
// in input order; a per-document service error is reported through the
// IsError field rather than failing the whole batch.
func (a Azure) KeyPhrases(texts []string) ([]rfprag.PhraseResult, error) {
	reqBody := struct {
		Kind          string        `json:"kind"`
		AnalysisInput analysisInput `json:"analysisInput"`
	}{
		Kind:          "KeyPhraseExtraction",
		AnalysisInput: analysisInput{Documents: a.inputDocuments(texts)},
	}

	url := fmt.Sprintf("%s/language/:analyze-text?api-version=%s", a.endpoint, apiVersion)
	body, err := a.post(url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to call key phrase extraction: %w", err)
	}

	var parsed struct {
		Results struct {
			Documents []struct {
				ID         string   `json:"id"`
				KeyPhrases []string `json:"keyPhrases"`
			} `json:"documents"`
			Errors []documentError `json:"errors"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse key phrase response: %w", err)
	}

	results := make([]rfprag.PhraseResult, len(texts))
	for _, doc := range parsed.Results.Documents {
		idx, ok := documentIndex(doc.ID, len(texts))
		if !ok {
			continue
		}
		results[idx] = rfprag.PhraseResult{Phrases: doc.KeyPhrases}
	}
	for _, docErr := range parsed.Results.Errors {
		idx, ok := documentIndex(docErr.ID, len(texts))
		if !ok {
			continue
		}
		results[idx] = rfprag.PhraseResult{IsError: true, ErrMessage: docErr.Error.Message}
	}

	return results, nil
}

// Summarize runs extractive summarization for each input text, capped at
// maxSentences sentences per document in the service's rank order. The
// asynchronous job is polled until it finishes or the poll timeout elapses.
func (a Azure) Summarize(texts []string, maxSentences int) ([]rfprag.SummaryResult, error) {
	reqBody := struct {
		AnalysisInput analysisInput `json:"analysisInput"`
		Tasks         []any         `json:"tasks"`
	}{
		AnalysisInput: analysisInput{Documents: a.inputDocuments(texts)},
		Tasks: []any{
			map[string]any{
				"kind": "ExtractiveSummarization",
				"parameters": map[string]any{
					"sentenceCount": maxSentences,
					"sortBy":        "Rank",
				},
			},
		},
	}

	url := fmt.Sprintf("%s/language/analyze-text/jobs?api-version=%s", a.endpoint, apiVersion)
	operationURL, err := a.submitJob(url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to submit summarization job: %w", err)
	}

	body, err := a.pollJob(operationURL)
	if err != nil {
		return nil, fmt.Errorf("failed to poll summarization job: %w", err)
	}

	var parsed struct {
		Tasks struct {
			Items []struct {
				Results struct {
					Documents []struct {
						ID        string `json:"id"`
						Sentences []struct {
							Text string `json:"text"`
						} `json:"sentences"`
					} `json:"documents"`
					Errors []documentError `json:"errors"`
				} `json:"results"`
			} `json:"items"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse summarization response: %w", err)
	}
	if len(parsed.Tasks.Items) == 0 {
		return nil, errors.New("summarization job returned no task results")
	}

	results := make([]rfprag.SummaryResult, len(texts))
	taskResults := parsed.Tasks.Items[0].Results
	for _, doc := range taskResults.Documents {
		idx, ok := documentIndex(doc.ID, len(texts))
		if !ok {
			continue
		}
		sentences := make([]string, len(doc.Sentences))
		for i, sentence := range doc.Sentences {
			sentences[i] = sentence.Text
		}
		results[idx] = rfprag.SummaryResult{Sentences: sentences}
	}
	for _, docErr := range taskResults.Errors {
		idx, ok := documentIndex(docErr.ID, len(texts))
		if !ok {
			continue
		}
		results[idx] = rfprag.SummaryResult{IsError: true, ErrMessage: docErr.Error.Message}
	}

	return results, nil
}

func (a Azure) inputDocuments(texts []string) []inputDocument {
	docs := make([]inputDocument, len(texts))
	for i, text := range texts {
		docs[i] = inputDocument{
			ID:       strconv.Itoa(i + 1),
			Language: a.language,
			Text:     text,
		}
	}
	return docs
}

func documentIndex(id string, size int) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 || n > size {
		return 0, false
	}
	return n - 1, true
}

func (a Azure) post(url string, payload any) ([]byte, error) {
	resp, err := a.send(url, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	return body, nil
}

func (a Azure) submitJob(url string, payload any) (string, error) {
	resp, err := a.send(url, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", errors.New("missing operation-location header")
	}

	return operationURL, nil
}

func (a Azure) pollJob(operationURL string) ([]byte, error) {
	deadline := time.Now().Add(a.pollTimeout)

	for {
		req, err := http.NewRequest(http.MethodGet, operationURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create poll request: %w", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", a.apiKey)

		resp, err := a.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to poll job: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read poll response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected poll status %d: %s", resp.StatusCode, body)
		}

		var status struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &status); err != nil {
			return nil, fmt.Errorf("failed to parse poll response: %w", err)
		}

		a.logger.Debug("Polled summarization job", "status", status.Status)

		switch status.Status {
		case "succeeded":
			return body, nil
		case "failed", "cancelled":
			return nil, fmt.Errorf("summarization job %s", status.Status)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("summarization job did not finish within %s", a.pollTimeout)
		}
		time.Sleep(a.pollInterval)
	}
}

func (a Azure) send(url string, payload any) (*http.Response, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}
