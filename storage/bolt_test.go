package storage_test

import (
	"path/filepath"
	"testing"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
	"github.com/MegaGrindStone/go-rfp-rag/storage"
	"github.com/stretchr/testify/require"
)

func newTestBolt(t *testing.T) storage.Bolt {
	t.Helper()

	store, err := storage.NewBolt(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.DB.Close())
	})

	return store
}

func TestBoltPutGet(t *testing.T) {
	store := newTestBolt(t)

	content := []byte("제안 요청서 내용")
	require.NoError(t, store.Put("word-data", "rfp.docx", content, false))

	got, err := store.Get("word-data", "rfp.docx")
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestBoltGetMissing(t *testing.T) {
	store := newTestBolt(t)

	_, err := store.Get("word-data", "missing.docx")
	require.ErrorIs(t, err, rfprag.ErrDocumentNotFound)

	// Unknown container behaves the same as a missing document.
	_, err = store.Get("unknown-container", "rfp.docx")
	require.ErrorIs(t, err, rfprag.ErrDocumentNotFound)
}

func TestBoltPutOverwrite(t *testing.T) {
	store := newTestBolt(t)

	require.NoError(t, store.Put("word-data", "rfp.docx", []byte("v1"), false))

	err := store.Put("word-data", "rfp.docx", []byte("v2"), false)
	require.ErrorIs(t, err, rfprag.ErrDocumentExists)

	got, err := store.Get("word-data", "rfp.docx")
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got, "a rejected put must leave the document untouched")

	require.NoError(t, store.Put("word-data", "rfp.docx", []byte("v2"), true))

	got, err = store.Get("word-data", "rfp.docx")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)
}

func TestBoltList(t *testing.T) {
	store := newTestBolt(t)

	names, err := store.List("word-data")
	require.NoError(t, err)
	require.Empty(t, names)

	require.NoError(t, store.Put("word-data", "b.docx", []byte("b"), false))
	require.NoError(t, store.Put("word-data", "a.docx", []byte("a"), false))
	require.NoError(t, store.Put("other", "c.docx", []byte("c"), false))

	names, err = store.List("word-data")
	require.NoError(t, err)
	require.Equal(t, []string{"a.docx", "b.docx"}, names)
}

func TestBoltDelete(t *testing.T) {
	store := newTestBolt(t)

	require.NoError(t, store.Put("word-data", "rfp.docx", []byte("content"), false))
	require.NoError(t, store.Delete("word-data", "rfp.docx"))

	_, err := store.Get("word-data", "rfp.docx")
	require.ErrorIs(t, err, rfprag.ErrDocumentNotFound)

	err = store.Delete("word-data", "rfp.docx")
	require.ErrorIs(t, err, rfprag.ErrDocumentNotFound)
}
