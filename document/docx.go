package document

import (
	"fmt"
	"os"
	"strings"

	docx "github.com/fumiama/go-docx"
)

// parseDocx extracts paragraph text from a Word document. The parser works
// on a file handle, so the bytes are staged in a temporary file that is
// removed on every exit path, including parse failure.
func parseDocx(data []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "rfprag-*.docx")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write temporary file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}

	paragraphs := []string{}
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := strings.TrimSpace(para.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return paragraphs, nil
}
