package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/strata/pkg/domain"
)

// Loader implements ports.DocumentLoader using an in-memory map.
type Loader struct {
	docs map[string][]byte
}

// NewLoader creates a new Loader from raw JSON snapshots keyed by document ID.
func NewLoader(data map[string]string) *Loader {
	docs := make(map[string][]byte)
	for k, v := range data {
		docs[k] = []byte(v)
	}
	return &Loader{
		docs: docs,
	}
}

// NewFromDocuments creates a new Loader from domain objects.
// This handles serialization automatically, improving DX for tests.
func NewFromDocuments(docs ...*domain.DocumentSpec) (*Loader, error) {
	data := make(map[string][]byte)
	for _, d := range docs {
		if d == nil || d.ID == "" {
			return nil, fmt.Errorf("document missing ID")
		}
		bytes, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document %s: %w", d.ID, err)
		}
		data[d.ID] = bytes
	}
	return &Loader{docs: data}, nil
}

// LoadDocument decodes the snapshot stored under id.
func (l *Loader) LoadDocument(ctx context.Context, id string) (*domain.DocumentSpec, error) {
	raw, ok := l.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	var doc domain.DocumentSpec
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return &doc, nil
}

// ListDocuments returns all available document IDs.
func (l *Loader) ListDocuments(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.docs))
	for k := range l.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
