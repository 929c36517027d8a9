package llm

import (
	"regexp"
)

var thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkTags removes <think> tags and everything in between them from a string.
// Local reasoning models emit these blocks even when thinking is disabled.
func RemoveThinkTags(input string) string {
	return thinkTagPattern.ReplaceAllString(input, "")
}
