package websearch_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/MegaGrindStone/go-rfp-rag/websearch"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}

		var reqBody struct {
			Query     string `json:"query"`
			Freshness string `json:"freshness"`
			Summary   bool   `json:"summary"`
			Count     int    `json:"count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if reqBody.Query != "금융권 RFP 동향" {
			t.Errorf("unexpected query %q", reqBody.Query)
		}
		if reqBody.Freshness != "noLimit" {
			t.Errorf("expected freshness noLimit, got %q", reqBody.Freshness)
		}
		if !reqBody.Summary {
			t.Error("expected summary to be requested")
		}
		if reqBody.Count != 5 {
			t.Errorf("expected count 5, got %d", reqBody.Count)
		}

		fmt.Fprint(w, `{
			"results": [
				{"summary": "first background summary"},
				{"summary": "second background summary"}
			]
		}`)
	}))
	defer server.Close()

	client := websearch.NewLangSearch(server.URL, "test-key", testLogger(t))

	results, err := client.Search("금융권 RFP 동향")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Summary != "first background summary" {
		t.Errorf("unexpected first summary %q", results[0].Summary)
	}
}

func TestSearchServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := websearch.NewLangSearch(server.URL, "bad-key", testLogger(t))

	if _, err := client.Search("query"); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestSearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer server.Close()

	client := websearch.NewLangSearch(server.URL, "test-key", testLogger(t))

	results, err := client.Search("query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
