package rfprag_test

import (
	"fmt"
	"log/slog"
	"os"
	"testing"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
)

type MockAnalyzer struct {
	keyPhrasesErr  error
	summarizeErr   error
	phraseResults  []rfprag.PhraseResult
	summaryResults []rfprag.SummaryResult

	// For tracking interactions
	keyPhrasesCalls [][]string
	summarizeCalls  [][]string
}

type MockCompleter struct {
	response rfprag.CompletionResponse
	err      error

	// Errors consumed in order before response is returned. When exhausted,
	// err (or response) applies.
	errSequence []error

	// Track calls
	calls []MockCompleterCall
}

type MockCompleterCall struct {
	System string
	User   string
}

type MockWebSearcher struct {
	results []rfprag.WebResult
	err     error

	queries []string
}

func (m *MockAnalyzer) KeyPhrases(texts []string) ([]rfprag.PhraseResult, error) {
	m.keyPhrasesCalls = append(m.keyPhrasesCalls, texts)
	if m.keyPhrasesErr != nil {
		return nil, m.keyPhrasesErr
	}
	if m.phraseResults != nil {
		return m.phraseResults, nil
	}

	results := make([]rfprag.PhraseResult, len(texts))
	for i := range texts {
		results[i] = rfprag.PhraseResult{
			Phrases: []string{fmt.Sprintf("phrase for text %d", i)},
		}
	}
	return results, nil
}

func (m *MockAnalyzer) Summarize(texts []string, maxSentences int) ([]rfprag.SummaryResult, error) {
	m.summarizeCalls = append(m.summarizeCalls, texts)
	if m.summarizeErr != nil {
		return nil, m.summarizeErr
	}
	if m.summaryResults != nil {
		return m.summaryResults, nil
	}

	results := make([]rfprag.SummaryResult, len(texts))
	for i := range texts {
		results[i] = rfprag.SummaryResult{
			Sentences: []string{fmt.Sprintf("summary for text %d", i)},
		}
	}
	return results, nil
}

func (m *MockCompleter) Complete(system, user string) (rfprag.CompletionResponse, error) {
	m.calls = append(m.calls, MockCompleterCall{System: system, User: user})

	if len(m.errSequence) > 0 {
		err := m.errSequence[0]
		m.errSequence = m.errSequence[1:]
		if err != nil {
			return rfprag.CompletionResponse{}, err
		}
		return m.response, nil
	}
	if m.err != nil {
		return rfprag.CompletionResponse{}, m.err
	}
	return m.response, nil
}

func (m *MockWebSearcher) Search(query string) ([]rfprag.WebResult, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
