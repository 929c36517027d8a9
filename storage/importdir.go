package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
	ignore "github.com/sabhiram/go-gitignore"
)

// supportedExtensions are the document formats the extractor understands.
var supportedExtensions = []string{".docx", ".pdf", ".md", ".txt"}

// ImportDir walks a directory tree and uploads every supported document into
// the container. Files matched by any .gitignore in the tree are skipped,
// as are unsupported formats. It returns the names of uploaded documents;
// with overwrite disabled, documents already present are skipped and
// reported in the skipped list.
func ImportDir(store rfprag.BlobStore, container, dir string, overwrite bool, logger *slog.Logger) (uploaded, skipped []string, err error) {
	logger = logger.With(slog.String("module", "storage"))

	// First pass: collect all .gitignore files and compile matchers
	matchers := make(map[string]*ignore.GitIgnore)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Base(path) != ".gitignore" {
			return nil
		}

		matcher, err := ignore.CompileIgnoreFile(path)
		if err != nil {
			return fmt.Errorf("error compiling .gitignore at %s: %w", path, err)
		}
		matchers[filepath.Dir(path)] = matcher

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error walking directory for .gitignore files: %w", err)
	}

	// Second pass: upload supported files excluding ignored ones
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		if ignored(path, dir, matchers) {
			logger.Debug("Skipping ignored file", "path", path)
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		name := filepath.Base(path)
		if err := store.Put(container, name, data, overwrite); err != nil {
			if errors.Is(err, rfprag.ErrDocumentExists) {
				skipped = append(skipped, name)
				return nil
			}
			return fmt.Errorf("failed to upload %s: %w", name, err)
		}
		uploaded = append(uploaded, name)

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error importing directory: %w", err)
	}

	logger.Info("Imported directory", "dir", dir, "uploaded", len(uploaded), "skipped", len(skipped))

	return uploaded, skipped, nil
}

// ignored reports whether any .gitignore between the import root and the
// file's directory matches the file.
func ignored(path, root string, matchers map[string]*ignore.GitIgnore) bool {
	for dir := filepath.Dir(path); strings.HasPrefix(dir, root); dir = filepath.Dir(dir) {
		matcher, ok := matchers[dir]
		if !ok {
			if dir == root {
				break
			}
			continue
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}
		if matcher.MatchesPath(rel) {
			return true
		}

		if dir == root {
			break
		}
	}
	return false
}
