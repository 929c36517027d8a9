package rfprag

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// BlobStore defines the interface for document storage operations.
// It provides methods to list, fetch, upload, and delete raw documents
// scoped by a container name.
type BlobStore interface {
	List(container string) ([]string, error)
	Get(container, name string) ([]byte, error)
	Put(container, name string, data []byte, overwrite bool) error
	Delete(container, name string) error
}

// TextAnalyzer defines the interface for the external text-analytics capability.
// It provides key-phrase extraction and extractive summarization over batches
// of input texts. Each result corresponds to the input text at the same index.
type TextAnalyzer interface {
	KeyPhrases(texts []string) ([]PhraseResult, error)
	Summarize(texts []string, maxSentences int) ([]SummaryResult, error)
}

// Completer defines the interface for chat-completion services.
// Implementations must wrap rate-limit signals with ErrRateLimited so the
// retry policy in Invoke can distinguish them from other failures.
type Completer interface {
	Complete(system, user string) (CompletionResponse, error)
}

// WebSearcher defines the interface for the external web-search capability
// used to build background context for prompts.
type WebSearcher interface {
	Search(query string) ([]WebResult, error)
}

// IndexSearcher defines the interface for querying the separately indexed
// corpus. Only fields declared searchable by the index schema may be passed
// in searchFields.
type IndexSearcher interface {
	Search(query string, searchFields []string, top int) ([]IndexDocument, error)
}

// Document represents an extracted document: its name in the backing store,
// a content fingerprint, and the ordered non-empty paragraphs of its text.
// A Document is immutable once extracted.
type Document struct {
	Name        string
	Fingerprint uint64
	Paragraphs  []string
}

// Text returns the full document text with paragraphs joined by newlines.
func (d Document) Text() string {
	return strings.Join(d.Paragraphs, "\n")
}

// Chunk is a bounded-size slice of document text built from whole paragraphs.
// Chunks are produced in document order and analyzed independently.
type Chunk struct {
	Index      int
	Content    string
	CharLength int
}

// PhraseResult holds the key phrases extracted from a single input text.
type PhraseResult struct {
	Phrases    []string
	IsError    bool
	ErrMessage string
}

// SummaryResult holds the extractive summary sentences for a single input
// text, in the service's ranked order.
type SummaryResult struct {
	Sentences  []string
	IsError    bool
	ErrMessage string
}

// WebResult is a single web-search hit. Only the summary field is consumed.
type WebResult struct {
	Summary string
}

// ExternalContext is the background-context string built from web-search
// result summaries. It may be empty if the search failed or returned nothing.
type ExternalContext struct {
	Query   string
	Content string
}

// IndexDocument is a single hit from the indexed corpus.
type IndexDocument struct {
	Title   string
	Content string
	Author  string
	Created string
}

// Usage reports token consumption for a single completion call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse is the result of a single chat-completion invocation.
type CompletionResponse struct {
	Content string
	Usage   Usage
}

// Severity classifies a Warning.
type Severity string

const (
	// SeveritySoft marks an advisory warning.
	SeveritySoft Severity = "soft"
	// SeverityHard marks a warning that requires user action.
	SeverityHard Severity = "hard"
)

// Warning is a non-fatal condition surfaced to the user, such as an exceeded
// token budget or a degraded external search.
type Warning struct {
	Severity Severity
	Message  string
}

var (
	// ErrDocumentNotFound is returned when a document is not found in the backing store.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentExists is returned when uploading without overwrite and the
	// document already exists in the backing store.
	ErrDocumentExists = errors.New("document already exists")
	// ErrRateLimited is returned when an external service signals that the
	// request quota has been exceeded.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmptyQuestion is returned when a chat question is empty or whitespace-only.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrNoSearchableFields is returned when none of the requested search
	// fields are declared searchable by the index schema.
	ErrNoSearchableFields = errors.New("no searchable fields selected")
)

// ParseError reports a document that could not be parsed into paragraphs.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse document %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func promptTemplate(name, templ string, data any) (string, error) {
	buf := strings.Builder{}
	tmpl := template.Must(template.New(name).Parse(templ))
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func appendIfUnique(slice []string, item string) []string {
	for _, ele := range slice {
		if ele == item {
			return slice
		}
	}
	return append(slice, item)
}

func removeMarkdownBackticks(input string) string {
	lines := strings.Split(input, "\n")

	// Filter out lines that start with triple backticks
	var filteredLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			filteredLines = append(filteredLines, line)
		}
	}

	return strings.Join(filteredLines, "\n")
}
