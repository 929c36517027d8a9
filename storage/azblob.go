// Package storage provides BlobStore implementations: the production Azure
// Blob Storage backend and a local bbolt backend for offline use and tests.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	rfprag "github.com/MegaGrindStone/go-rfp-rag"
)

// DefaultContainer is the blob container the system stores uploaded
// documents in.
const DefaultContainer = "word-data"

// AzureBlob provides a BlobStore implementation backed by Azure Blob Storage.
type AzureBlob struct {
	client *azblob.Client
	logger *slog.Logger
}

// NewAzureBlob creates a new Azure Blob Storage client from a connection string.
func NewAzureBlob(connectionString string, logger *slog.Logger) (AzureBlob, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return AzureBlob{}, fmt.Errorf("failed to create blob client: %w", err)
	}

	return AzureBlob{
		client: client,
		logger: logger.With(slog.String("module", "azblob")),
	}, nil
}

// List returns the names of all blobs in the container.
func (a AzureBlob) List(container string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	names := []string{}
	pager := a.client.NewListBlobsFlatPager(container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}

	return names, nil
}

// Get downloads a blob's content. A missing blob or container is reported as
// rfprag.ErrDocumentNotFound.
func (a AzureBlob) Get(container, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	resp, err := a.client.DownloadStream(ctx, container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%s: %w", name, rfprag.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob content: %w", err)
	}

	return data, nil
}

// Put uploads a blob. With overwrite disabled, an existing blob is reported
// as rfprag.ErrDocumentExists and left untouched.
func (a AzureBlob) Put(container, name string, data []byte, overwrite bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	opts := &azblob.UploadBufferOptions{}
	if !overwrite {
		opts.AccessConditions = &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{
				IfNoneMatch: to.Ptr(azcore.ETagAny),
			},
		}
	}

	if _, err := a.client.UploadBuffer(ctx, container, name, data, opts); err != nil {
		if bloberror.HasCode(err, bloberror.BlobAlreadyExists) {
			return fmt.Errorf("%s: %w", name, rfprag.ErrDocumentExists)
		}
		return fmt.Errorf("failed to upload blob: %w", err)
	}

	a.logger.Info("Uploaded blob", "container", container, "name", name, "size", len(data))

	return nil
}

// Delete removes a blob. A missing blob is reported as rfprag.ErrDocumentNotFound.
func (a AzureBlob) Delete(container, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := a.client.DeleteBlob(ctx, container, name, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return fmt.Errorf("%s: %w", name, rfprag.ErrDocumentNotFound)
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}

	return nil
}
