package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DocumentLoaderContractTest is a reusable test suite that verifies if an adapter
// complies with ports.DocumentLoader. expected maps document IDs to the root
// child IDs the loader must produce, in order.
func DocumentLoaderContractTest(t *testing.T, loader ports.DocumentLoader, expected map[string][]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadDocument_Success", func(t *testing.T) {
		for id, children := range expected {
			doc, err := loader.LoadDocument(ctx, id)
			require.NoError(t, err, "unexpected error loading %s", id)
			assert.Equal(t, domain.KindRoot, doc.Root.Kind)

			got := make([]string, 0, len(doc.Root.Children))
			for _, c := range doc.Root.Children {
				got = append(got, c.ID)
			}
			assert.Equal(t, children, got, "root children mismatch for %s", id)
		}
	})

	t.Run("LoadDocument_NotFound", func(t *testing.T) {
		_, err := loader.LoadDocument(ctx, "non-existent-document")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDocumentNotFound), "expected ErrDocumentNotFound, got %v", err)
	})

	t.Run("ListDocuments", func(t *testing.T) {
		ids, err := loader.ListDocuments(ctx)
		require.NoError(t, err)
		for id := range expected {
			assert.Contains(t, ids, id)
		}
	})
}
