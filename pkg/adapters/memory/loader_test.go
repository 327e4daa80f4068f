package memory_test

import (
	"testing"

	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
	contract "github.com/aretw0/strata/pkg/ports/tests"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	data := map[string]string{
		"poster": `{"id":"poster","root":{"id":"root","kind":"root","children":[{"id":"bg","kind":"paint"},{"id":"text","kind":"group"}]}}`,
		"empty":  `{"root":{"id":"root","kind":"root"}}`,
	}

	loader := memory.NewLoader(data)

	contract.DocumentLoaderContractTest(t, loader, map[string][]string{
		"poster": {"bg", "text"},
		"empty":  {},
	})
}

func TestNewFromDocuments(t *testing.T) {
	loader, err := memory.NewFromDocuments(&domain.DocumentSpec{
		ID:   "doc",
		Root: domain.NodeSpec{ID: "root", Kind: domain.KindRoot, Children: []domain.NodeSpec{{ID: "a", Kind: domain.KindPaint}}},
	})
	require.NoError(t, err)
	contract.DocumentLoaderContractTest(t, loader, map[string][]string{"doc": {"a"}})

	_, err = memory.NewFromDocuments(&domain.DocumentSpec{})
	require.Error(t, err)
}
