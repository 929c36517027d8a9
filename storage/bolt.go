package storage

import (
	"fmt"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
	bolt "go.etcd.io/bbolt"
)

// Bolt provides a BlobStore implementation backed by a local BoltDB file.
// Each container maps to a bucket. It serves offline development and tests
// with the same semantics as the Azure backend.
type Bolt struct {
	DB *bolt.DB
}

// NewBolt creates a new BoltDB store with the provided file path.
func NewBolt(path string) (Bolt, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return Bolt{}, fmt.Errorf("failed to open bolt database: %w", err)
	}

	return Bolt{DB: db}, nil
}

// List returns the names of all documents in the container. An unknown
// container yields an empty list, matching an empty blob container.
func (b Bolt) List(container string) ([]string, error) {
	names := []string{}

	err := b.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(container))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return names, nil
}

// Get retrieves a document's content by name, reporting a missing document
// as rfprag.ErrDocumentNotFound.
func (b Bolt) Get(container, name string) ([]byte, error) {
	var data []byte

	err := b.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(container))
		if bucket == nil {
			return fmt.Errorf("%s: %w", name, rfprag.ErrDocumentNotFound)
		}

		content := bucket.Get([]byte(name))
		if content == nil {
			return fmt.Errorf("%s: %w", name, rfprag.ErrDocumentNotFound)
		}

		data = make([]byte, len(content))
		copy(data, content)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}

// Put stores a document. With overwrite disabled, an existing document is
// reported as rfprag.ErrDocumentExists and left untouched.
func (b Bolt) Put(container, name string, data []byte, overwrite bool) error {
	return b.DB.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(container))
		if err != nil {
			return fmt.Errorf("failed to create container bucket: %w", err)
		}

		if !overwrite && bucket.Get([]byte(name)) != nil {
			return fmt.Errorf("%s: %w", name, rfprag.ErrDocumentExists)
		}

		if err := bucket.Put([]byte(name), data); err != nil {
			return fmt.Errorf("failed to put document: %w", err)
		}

		return nil
	})
}

// Delete removes a document, reporting a missing one as rfprag.ErrDocumentNotFound.
func (b Bolt) Delete(container, name string) error {
	return b.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(container))
		if bucket == nil || bucket.Get([]byte(name)) == nil {
			return fmt.Errorf("%s: %w", name, rfprag.ErrDocumentNotFound)
		}

		return bucket.Delete([]byte(name))
	})
}
