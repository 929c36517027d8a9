package index

import (
	"context"
	"fmt"
	"time"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
	"github.com/philippgille/chromem-go"
)

// Chromem provides a local corpus index backed by a persistent chromem
// database, for development without an Azure Cognitive Search service. It
// implements the IndexSearcher interface with the same searchable-field
// semantics as AzureSearch.
type Chromem struct {
	coll *chromem.Collection
}

// NewChromem creates a local index persisted at dbPath. The embeddingFunc
// provides the vector embedding capability for both indexing and queries.
func NewChromem(dbPath string, embeddingFunc chromem.EmbeddingFunc) (Chromem, error) {
	db, err := chromem.NewPersistentDB(dbPath, false)
	if err != nil {
		return Chromem{}, fmt.Errorf("failed to create chromem db: %w", err)
	}

	coll, err := db.GetOrCreateCollection("corpus", nil, embeddingFunc)
	if err != nil {
		return Chromem{}, fmt.Errorf("failed to create corpus collection: %w", err)
	}

	return Chromem{coll: coll}, nil
}

// Add indexes a document with its display metadata.
func (c Chromem) Add(id string, doc rfprag.IndexDocument) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.coll.AddDocument(ctx, chromem.Document{
		ID:      id,
		Content: doc.Content,
		Metadata: map[string]string{
			"title":   doc.Title,
			"author":  doc.Author,
			"created": doc.Created,
		},
	}); err != nil {
		return fmt.Errorf("failed to add document to corpus: %w", err)
	}

	return nil
}

// Search queries the local corpus. Only the content field is searchable,
// matching the production index schema.
func (c Chromem) Search(query string, searchFields []string, top int) ([]rfprag.IndexDocument, error) {
	if len(filterSearchable(searchFields)) == 0 {
		return nil, rfprag.ErrNoSearchableFields
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if count := c.coll.Count(); count < top {
		top = count
	}
	if top <= 0 {
		return nil, nil
	}

	vecRes, err := c.coll.Query(ctx, query, top, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus: %w", err)
	}

	docs := make([]rfprag.IndexDocument, len(vecRes))
	for i, res := range vecRes {
		docs[i] = rfprag.IndexDocument{
			Title:   res.Metadata["title"],
			Content: res.Content,
			Author:  res.Metadata["author"],
			Created: res.Metadata["created"],
		}
	}

	return docs, nil
}
