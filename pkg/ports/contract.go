package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractDocument builds a small document with a clone so stores have to keep
// nested children and source references intact.
func contractDocument(id string) *domain.DocumentSpec {
	return &domain.DocumentSpec{
		ID:    id,
		Title: "contract",
		Root: domain.NodeSpec{
			ID:   "root",
			Kind: domain.KindRoot,
			Children: []domain.NodeSpec{
				{ID: "bg", Kind: domain.KindPaint, Name: "Background", Bounds: domain.Rect{W: 64, H: 64}, Content: "aGVsbG8="},
				{
					ID:   "grp",
					Kind: domain.KindGroup,
					Name: "Group",
					Children: []domain.NodeSpec{
						{ID: "c1", Kind: domain.KindClone, Name: "Clone", Source: "bg"},
					},
				},
			},
		},
	}
}

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	docID := "contract-test-doc-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		doc := contractDocument(docID)

		err := store.Save(ctx, docID, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.Title, loaded.Title)
		require.Len(t, loaded.Root.Children, 2)
		assert.Equal(t, "bg", loaded.Root.Children[0].ID)

		clone := loaded.Find("c1")
		require.NotNil(t, clone, "nested clone should survive persistence")
		assert.Equal(t, "bg", clone.Source)
		assert.Equal(t, domain.KindClone, clone.Kind)
	})

	t.Run("Stored copy is isolated", func(t *testing.T) {
		doc := contractDocument(docID)
		require.NoError(t, store.Save(ctx, docID, doc))

		doc.Root.Children[0].Name = "mutated after save"

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "Background", loaded.Root.Children[0].Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, docID, contractDocument(docID))
		require.NoError(t, err)

		err = store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := docID + "-1"
		id2 := docID + "-2"
		_ = store.Save(ctx, id1, contractDocument(id1))
		_ = store.Save(ctx, id2, contractDocument(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		docs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, docs, id1)
		assert.Contains(t, docs, id2)
	})
}
