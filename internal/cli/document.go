package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/adapters/file"
	loamAdapter "github.com/aretw0/strata/pkg/adapters/loam"
	"github.com/aretw0/strata/pkg/domain"
)

// Source locates a document on disk: a snapshot file, or a markdown document
// inside a Loam repository.
type Source struct {
	// Path is the snapshot file or the repository directory.
	Path string
	// ID names the document inside the repository. Empty for snapshot files.
	ID string
}

// IsRepo reports whether the document lives in a Loam repository.
func (s Source) IsRepo() bool { return s.ID != "" }

// ResolveSource interprets a command-line path.
// A directory resolves to its entry document, a .md file to the repository
// that contains it, and .json/.yaml/.yml files to plain snapshots.
func ResolveSource(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Source{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, path)
		}
		return Source{}, err
	}
	if info.IsDir() {
		return Source{Path: path, ID: determineEntryPoint(path)}, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return Source{Path: path}, nil
	case ".md":
		base := filepath.Base(path)
		return Source{Path: filepath.Dir(path), ID: strings.TrimSuffix(base, filepath.Ext(base))}, nil
	default:
		return Source{}, fmt.Errorf("unsupported document file %q", path)
	}
}

// ReadSpec loads the snapshot at path without building a tree, so it can be
// validated first.
func ReadSpec(ctx context.Context, path string) (*domain.DocumentSpec, error) {
	src, err := ResolveSource(path)
	if err != nil {
		return nil, err
	}
	if !src.IsRepo() {
		return file.ReadDocument(src.Path)
	}
	loader, err := loamAdapter.Open(src.Path)
	if err != nil {
		return nil, err
	}
	return loader.LoadDocument(ctx, src.ID)
}

// OpenDocument loads the document at path and builds its tree.
func OpenDocument(ctx context.Context, path string, opts ...strata.Option) (*strata.Document, error) {
	src, err := ResolveSource(path)
	if err != nil {
		return nil, err
	}
	if src.IsRepo() {
		return strata.LoadFromRepo(ctx, src.Path, src.ID, opts...)
	}
	spec, err := file.ReadDocument(src.Path)
	if err != nil {
		return nil, err
	}
	return strata.Open(spec, opts...)
}

// determineEntryPoint picks the document a directory stands for.
func determineEntryPoint(dir string) string {
	candidates := []string{"document", "index", "main"}
	if abs, err := filepath.Abs(dir); err == nil {
		candidates = append(candidates, filepath.Base(abs))
	}
	for _, id := range candidates {
		if hasDocument(dir, id) {
			return id
		}
	}
	return "document"
}

// hasDocument checks if a document exists as a file in the directory.
func hasDocument(dir, id string) bool {
	for _, ext := range []string{".md", ".yaml", ".json"} {
		if _, err := os.Stat(filepath.Join(dir, id+ext)); err == nil {
			return true
		}
	}
	return false
}
