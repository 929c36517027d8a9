package rfprag

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the default chunk size threshold. It keeps chunks under
// the text-analytics input limit of 5120 text elements with headroom for
// multi-byte scripts.
const DefaultMaxChars = 4000

const paragraphSeparator = "\n"

// ChunkParagraphs partitions ordered paragraphs into size-bounded chunks by
// greedy accumulation. A paragraph is appended to the current chunk only if
// the chunk stays within maxChars after the append; otherwise the chunk is
// closed and the paragraph starts a new one. A single paragraph longer than
// maxChars becomes its own chunk, the only case where a chunk may exceed the
// threshold. Paragraph boundaries are never split, and the concatenation of
// all chunks reproduces the input paragraphs in order exactly once.
//
// Lengths are counted in runes, matching how the downstream text-analytics
// service counts text elements.
func ChunkParagraphs(paragraphs []string, maxChars int) []Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	chunks := []Chunk{}
	current := strings.Builder{}
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		content := strings.TrimSuffix(current.String(), paragraphSeparator)
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Content:    content,
			CharLength: currentLen - 1,
		})
		current.Reset()
		currentLen = 0
	}

	for _, para := range paragraphs {
		if para == "" {
			continue
		}
		paraLen := utf8.RuneCountInString(para) + 1
		if currentLen > 0 && currentLen+paraLen-1 > maxChars {
			flush()
		}
		current.WriteString(para)
		current.WriteString(paragraphSeparator)
		currentLen += paraLen
	}
	flush()

	return chunks
}
