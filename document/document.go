// Package document extracts ordered paragraph text from documents stored in
// a blob store. It supports the docx, pdf, markdown, and plain-text formats.
package document

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
	"github.com/cespare/xxhash"
)

// Extract fetches the named document from the store and parses it into an
// immutable Document of ordered non-empty paragraphs. A missing document
// surfaces rfprag.ErrDocumentNotFound from the store; unparseable content is
// reported as a *rfprag.ParseError.
func Extract(store rfprag.BlobStore, container, name string, logger *slog.Logger) (rfprag.Document, error) {
	logger = logger.With(slog.String("module", "document"))

	data, err := store.Get(container, name)
	if err != nil {
		return rfprag.Document{}, fmt.Errorf("failed to fetch document: %w", err)
	}

	paragraphs, err := Parse(name, data)
	if err != nil {
		return rfprag.Document{}, err
	}

	logger.Info("Extracted document", "name", name, "paragraphs", len(paragraphs))

	return rfprag.Document{
		Name:        name,
		Fingerprint: xxhash.Sum64(data),
		Paragraphs:  paragraphs,
	}, nil
}

// Parse converts raw document bytes into ordered non-empty paragraphs,
// dispatching on the file extension of name.
func Parse(name string, data []byte) ([]string, error) {
	var paragraphs []string
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		paragraphs, err = parseDocx(data)
	case ".pdf":
		paragraphs, err = parsePDF(data)
	case ".md":
		paragraphs = parseMarkdown(data)
	case ".txt":
		paragraphs = parseText(data)
	default:
		err = errors.New("unsupported document format")
	}
	if err != nil {
		return nil, &rfprag.ParseError{Name: name, Err: err}
	}

	return paragraphs, nil
}

func parseText(data []byte) []string {
	paragraphs := []string{}
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}
