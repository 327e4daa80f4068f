package loam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Loader adapts the Loam library to the strata DocumentLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[DocumentMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[DocumentMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a strict, read-only Loam repository at path and wraps it.
func Open(path string) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[DocumentMetadata](repo)), nil
}

// LoadDocument reads the document file and converts its frontmatter into a spec.
func (l *Loader) LoadDocument(ctx context.Context, id string) (*domain.DocumentSpec, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		if l.missing(ctx, id, err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	rawID := doc.Data.ID
	if rawID == "" {
		rawID = doc.ID
	}

	spec := &domain.DocumentSpec{
		ID:    trimExtension(rawID),
		Title: doc.Data.Title,
		Root:  domain.NodeSpec{ID: "root", Kind: domain.KindRoot},
	}
	if spec.Title == "" {
		spec.Title = heading(doc.Content)
	}

	children, err := decodeNodes(doc.Data.Nodes, "nodes")
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}
	spec.Root.Children = children
	return spec, nil
}

// missing reports whether a Get failure means the document does not exist.
func (l *Loader) missing(ctx context.Context, id string, err error) bool {
	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	ids, listErr := l.ListDocuments(ctx)
	if listErr != nil {
		return false
	}
	want := trimExtension(id)
	for _, known := range ids {
		if known == want {
			return false
		}
	}
	return true
}

func decodeNodes(raw []any, path string) ([]domain.NodeSpec, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]domain.NodeSpec, 0, len(raw))
	for i, item := range raw {
		at := fmt.Sprintf("%s[%d]", path, i)
		node, err := decodeNode(item, at)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func decodeNode(item any, path string) (domain.NodeSpec, error) {
	var ln LoaderNode
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &ln,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return domain.NodeSpec{}, err
	}
	if err := dec.Decode(item); err != nil {
		return domain.NodeSpec{}, fmt.Errorf("%s: %w", path, err)
	}
	if ln.ID == "" {
		return domain.NodeSpec{}, fmt.Errorf("%s: node missing id", path)
	}

	node := domain.NodeSpec{
		ID:      ln.ID,
		Kind:    domain.Kind(ln.Kind),
		Name:    ln.Name,
		Source:  ln.Source,
		Content: ln.Content,
	}
	if node.Kind == "" {
		node.Kind = domain.KindPaint
	}

	bounds, err := decodeBounds(ln.Bounds)
	if err != nil {
		return domain.NodeSpec{}, fmt.Errorf("%s.bounds: %w", path, err)
	}
	node.Bounds = bounds

	if ln.Style != nil {
		style := domain.DefaultStyle()
		if err := mapstructure.WeakDecode(ln.Style, &style); err != nil {
			return domain.NodeSpec{}, fmt.Errorf("%s.style: %w", path, err)
		}
		node.Style = &style
	}

	node.Children, err = decodeNodes(ln.Children, path+".children")
	if err != nil {
		return domain.NodeSpec{}, err
	}
	return node, nil
}

func decodeBounds(raw any) (domain.Rect, error) {
	var r domain.Rect
	switch v := raw.(type) {
	case nil:
		return r, nil
	case []any:
		var parts []int
		if err := mapstructure.WeakDecode(v, &parts); err != nil {
			return r, err
		}
		if len(parts) != 4 {
			return r, fmt.Errorf("expected [x, y, w, h], got %d values", len(parts))
		}
		return domain.Rect{X: parts[0], Y: parts[1], W: parts[2], H: parts[3]}, nil
	default:
		if err := mapstructure.WeakDecode(v, &r); err != nil {
			return r, err
		}
		return r, nil
	}
}

// heading returns the first markdown heading of the body, if any.
func heading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}

// ListDocuments lists all documents in the repository.
func (l *Loader) ListDocuments(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch reports the IDs of documents that change on disk.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
