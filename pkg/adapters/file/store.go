package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// Store implements ports.DocumentStore using the local filesystem.
// It stores one snapshot file per document in a configured directory.
type Store struct {
	BasePath string
	Format   Format
}

// Option configures a Store.
type Option func(*Store)

// WithFormat selects JSON or YAML files. Defaults to JSON.
func WithFormat(f Format) Option {
	return func(s *Store) {
		if f == FormatJSON || f == FormatYAML {
			s.Format = f
		}
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".strata/documents".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".strata", "documents")
	}
	s := &Store{BasePath: basePath, Format: FormatJSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(docID string) string {
	return filepath.Join(s.BasePath, docID+s.Format.ext())
}

func validID(docID string) error {
	if docID == "" {
		return fmt.Errorf("docID cannot be empty")
	}
	if strings.ContainsAny(docID, `/\`) || docID == "." || docID == ".." {
		return fmt.Errorf("invalid docID %q", docID)
	}
	return nil
}

// Save persists the snapshot atomically.
func (s *Store) Save(ctx context.Context, docID string, doc *domain.DocumentSpec) error {
	if err := validID(docID); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure document directory: %w", err)
	}
	data, err := Marshal(doc, s.Format)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return writeAtomic(s.BasePath, s.path(docID), data)
}

// Load retrieves the snapshot from its file.
func (s *Store) Load(ctx context.Context, docID string) (*domain.DocumentSpec, error) {
	if err := validID(docID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(docID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}
	return Unmarshal(data, s.Format)
}

// Delete removes the snapshot file.
func (s *Store) Delete(ctx context.Context, docID string) error {
	if err := validID(docID); err != nil {
		return err
	}
	err := os.Remove(s.path(docID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return nil
}

// List returns the IDs of every stored document.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	ext := s.Format.ext()
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}
