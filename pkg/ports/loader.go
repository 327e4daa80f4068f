package ports

import (
	"context"

	"github.com/aretw0/strata/pkg/domain"
)

// DocumentLoader defines how documents are read from a definition source.
// This allows the definition layer (Loam, FS, Memory) to be decoupled.
type DocumentLoader interface {
	// LoadDocument retrieves a document snapshot by ID.
	// Returns domain.ErrDocumentNotFound if the document does not exist.
	LoadDocument(ctx context.Context, id string) (*domain.DocumentSpec, error)

	// ListDocuments returns the IDs of all documents available.
	ListDocuments(ctx context.Context) ([]string, error)
}
