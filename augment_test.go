package rfprag_test

import (
	"errors"
	"testing"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
)

func TestBuildExternalContext(t *testing.T) {
	searcher := &MockWebSearcher{
		results: []rfprag.WebResult{
			{Summary: "first summary"},
			{Summary: ""},
			{Summary: "second summary"},
		},
	}

	context, warnings := rfprag.BuildExternalContext(searcher, "financial RFP trends", testLogger(t))

	if context.Query != "financial RFP trends" {
		t.Errorf("unexpected query %q", context.Query)
	}
	if context.Content != "first summary\nsecond summary" {
		t.Errorf("unexpected context content %q", context.Content)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if len(searcher.queries) != 1 || searcher.queries[0] != "financial RFP trends" {
		t.Errorf("unexpected queries recorded: %v", searcher.queries)
	}
}

func TestBuildExternalContextSearchFailure(t *testing.T) {
	searcher := &MockWebSearcher{err: errors.New("api key rejected")}

	context, warnings := rfprag.BuildExternalContext(searcher, "query", testLogger(t))

	if context.Content != "" {
		t.Errorf("expected empty context on failure, got %q", context.Content)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warnings))
	}
	if warnings[0].Severity != rfprag.SeveritySoft {
		t.Errorf("expected soft warning, got %q", warnings[0].Severity)
	}

	// A degraded context must never block prompt composition.
	doc := rfprag.Document{Name: "rfp.docx", Paragraphs: []string{"본문"}}
	if _, _, err := rfprag.ComposeRAGPrompt(doc, context, "instruction"); err != nil {
		t.Errorf("prompt composition failed with empty context: %v", err)
	}
}

func TestBuildExternalContextNoResults(t *testing.T) {
	searcher := &MockWebSearcher{}

	context, warnings := rfprag.BuildExternalContext(searcher, "query", testLogger(t))

	if context.Content != "" {
		t.Errorf("expected empty context, got %q", context.Content)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings for an empty result set, got %v", warnings)
	}
}
