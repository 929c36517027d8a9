package rfprag

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// DefaultMaxSummarySentences caps the extractive summary length per chunk.
const DefaultMaxSummarySentences = 8

// Key phrases at most this long (after trimming) are noise from the
// analytics service and are dropped.
const minKeyPhraseLength = 2

// DefaultPhraseExclusions matches stopword-like tokens the analytics service
// tends to return for Korean RFP text. Hangul is outside RE2's ASCII \b word
// boundary, so boundaries are spelled out as whitespace or string edges.
var DefaultPhraseExclusions = regexp.MustCompile(`(^|\s)(의|년|SPI의)(\s|$)`)

// AnalyzeOptions configures document analysis. Zero values fall back to the
// package defaults.
type AnalyzeOptions struct {
	MaxChars            int
	MaxSummarySentences int
	PhraseExclusions    *regexp.Regexp
}

// ChunkAnalysis holds the analysis result for a single chunk. A failed chunk
// carries its error in Err and empty phrase and summary fields; failures on
// one chunk never abort the analysis of the remaining chunks.
type ChunkAnalysis struct {
	Chunk      Chunk
	KeyPhrases []string
	Summary    []string
	Err        error
}

// AnalyzeDocument chunks the document, cleans each chunk, and runs key-phrase
// extraction and extractive summarization on it through the provided
// analyzer. Chunks are processed sequentially in document order; each result
// reports per-chunk success or failure independently.
func AnalyzeDocument(doc Document, analyzer TextAnalyzer, opts AnalyzeOptions, logger *slog.Logger) []ChunkAnalysis {
	logger = logger.With(
		slog.String("package", "rfprag"),
		slog.String("function", "AnalyzeDocument"),
		slog.String("document", doc.Name),
	)

	maxSentences := opts.MaxSummarySentences
	if maxSentences == 0 {
		maxSentences = DefaultMaxSummarySentences
	}
	exclusions := opts.PhraseExclusions
	if exclusions == nil {
		exclusions = DefaultPhraseExclusions
	}

	chunks := ChunkParagraphs(doc.Paragraphs, opts.MaxChars)

	logger.Info("Analyzing chunks", "count", len(chunks))

	results := make([]ChunkAnalysis, len(chunks))
	for i, chunk := range chunks {
		analysis := analyzeChunk(chunk, analyzer, maxSentences, exclusions)
		if analysis.Err != nil {
			logger.Warn("Chunk analysis failed", "chunk", chunk.Index, "error", analysis.Err)
		}
		results[i] = analysis
	}

	return results
}

func analyzeChunk(chunk Chunk, analyzer TextAnalyzer, maxSentences int, exclusions *regexp.Regexp) ChunkAnalysis {
	analysis := ChunkAnalysis{Chunk: chunk}

	cleaned := CleanText(chunk.Content)

	phrases, err := analyzer.KeyPhrases([]string{cleaned})
	if err != nil {
		analysis.Err = fmt.Errorf("failed to extract key phrases: %w", err)
		return analysis
	}
	if len(phrases) == 0 {
		analysis.Err = errors.New("analytics service returned no key phrase result")
		return analysis
	}
	if phrases[0].IsError {
		analysis.Err = fmt.Errorf("key phrase extraction failed: %s", phrases[0].ErrMessage)
		return analysis
	}
	analysis.KeyPhrases = FilterKeyPhrases(phrases[0].Phrases, exclusions)

	summaries, err := analyzer.Summarize([]string{cleaned}, maxSentences)
	if err != nil {
		analysis.Err = fmt.Errorf("failed to extract summary: %w", err)
		return analysis
	}
	if len(summaries) == 0 {
		analysis.Err = errors.New("analytics service returned no summary result")
		return analysis
	}
	if summaries[0].IsError {
		analysis.Err = fmt.Errorf("summary extraction failed: %s", summaries[0].ErrMessage)
		return analysis
	}
	if len(summaries[0].Sentences) > maxSentences {
		analysis.Summary = summaries[0].Sentences[:maxSentences]
	} else {
		analysis.Summary = summaries[0].Sentences
	}

	return analysis
}

// FilterKeyPhrases drops phrases whose trimmed length is at most two
// characters or that match the exclusion pattern, then deduplicates the
// remainder keeping first occurrences.
func FilterKeyPhrases(phrases []string, exclusions *regexp.Regexp) []string {
	filtered := []string{}
	for _, phrase := range phrases {
		trimmed := strings.TrimSpace(phrase)
		if len([]rune(trimmed)) <= minKeyPhraseLength {
			continue
		}
		if exclusions != nil && exclusions.MatchString(trimmed) {
			continue
		}
		filtered = appendIfUnique(filtered, trimmed)
	}
	return filtered
}
