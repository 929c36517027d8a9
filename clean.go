package rfprag

import (
	"regexp"
	"strings"
)

// RFP documents mix Korean prose with ASCII identifiers; everything outside
// word characters, whitespace, and the Hangul syllable block is noise for the
// text-analytics service.
var (
	nonTextPattern    = regexp.MustCompile(`[^\w\s가-힣]`)
	digitsPattern     = regexp.MustCompile(`\d+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// CleanText normalizes a chunk for key-phrase extraction and summarization.
// It replaces symbols and digit runs with spaces, collapses whitespace runs
// to a single space, and trims the result. CleanText is idempotent.
func CleanText(text string) string {
	text = nonTextPattern.ReplaceAllString(text, " ")
	text = digitsPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
