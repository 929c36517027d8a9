package rfprag

import (
	"fmt"
	"log/slog"
	"strings"
)

// BuildExternalContext runs a web search for the query and concatenates the
// result summaries into a background-context string, skipping results without
// one. A failed or empty search degrades to an empty context with a soft
// warning; it never blocks downstream prompt composition.
func BuildExternalContext(searcher WebSearcher, query string, logger *slog.Logger) (ExternalContext, []Warning) {
	logger = logger.With(
		slog.String("package", "rfprag"),
		slog.String("function", "BuildExternalContext"),
	)

	context := ExternalContext{Query: query}

	results, err := searcher.Search(query)
	if err != nil {
		logger.Warn("External search failed, continuing without context", "query", query, "error", err)
		return context, []Warning{{
			Severity: SeveritySoft,
			Message:  fmt.Sprintf("external search failed, continuing without background context: %v", err),
		}}
	}

	summaries := make([]string, 0, len(results))
	for _, result := range results {
		if result.Summary == "" {
			continue
		}
		summaries = append(summaries, result.Summary)
	}
	context.Content = strings.Join(summaries, "\n")

	logger.Info("Collected external context", "query", query, "results", len(summaries))

	return context, nil
}
