package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding of snapshot files.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension. Anything that is not
// .json is treated as YAML.
func FormatOf(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return FormatJSON
	}
	return FormatYAML
}

func (f Format) ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".yaml"
}

// Marshal encodes a snapshot.
func Marshal(doc *domain.DocumentSpec, f Format) ([]byte, error) {
	if f == FormatJSON {
		return json.MarshalIndent(doc, "", "  ")
	}
	return yaml.Marshal(doc)
}

// Unmarshal decodes a snapshot.
func Unmarshal(data []byte, f Format) (*domain.DocumentSpec, error) {
	var doc domain.DocumentSpec
	if f == FormatJSON {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse json document: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse yaml document: %w", err)
		}
	}
	return &doc, nil
}

// ReadDocument reads a snapshot file, choosing the decoder by extension. The
// document ID defaults to the file name without extension.
func ReadDocument(path string) (*domain.DocumentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := Unmarshal(data, FormatOf(path))
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		base := filepath.Base(path)
		doc.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return doc, nil
}

// WriteDocument writes a snapshot file atomically, choosing the encoder by extension.
func WriteDocument(path string, doc *domain.DocumentSpec) error {
	data, err := Marshal(doc, FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure document directory: %w", err)
	}
	return writeAtomic(dir, path, data)
}

// writeAtomic writes to a temp file in the same directory, fsyncs it and
// renames it over dest.
func writeAtomic(dir, dest string, data []byte) error {
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
