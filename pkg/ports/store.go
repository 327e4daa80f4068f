package ports

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
)

// DocumentStore defines the interface for persisting document snapshots.
type DocumentStore interface {
	// Save persists the snapshot for a given document ID.
	Save(ctx context.Context, docID string, doc *domain.DocumentSpec) error

	// Load retrieves the snapshot for a given document ID.
	// Returns domain.ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, docID string) (*domain.DocumentSpec, error)

	// Delete removes the snapshot for a given document ID.
	Delete(ctx context.Context, docID string) error

	// List returns the IDs of all stored documents.
	List(ctx context.Context) ([]string, error)
}
