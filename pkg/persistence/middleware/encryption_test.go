package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/dsl"
	"github.com/aretw0/strata/pkg/persistence/middleware"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretPoster(t *testing.T) *domain.DocumentSpec {
	b := dsl.New("poster").Title("Launch Plan")
	b.Add("bg").Paint([]byte("confidential")).Name("Secret Layer")
	spec, err := b.Build()
	require.NoError(t, err)
	return spec
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunDocumentStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	original := secretPoster(t)
	require.NoError(t, secure.Save(ctx, "poster", original))

	stored, err := underlying.Load(ctx, "poster")
	require.NoError(t, err)
	assert.Empty(t, stored.Title)
	assert.Empty(t, stored.Root.Children)
	assert.Nil(t, stored.Find("bg"))

	loaded, err := secure.Load(ctx, "poster")
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, secureOld.Save(ctx, "poster", secretPoster(t)))

	secureNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := secureNew.Load(ctx, "poster")
	require.NoError(t, err)
	assert.Equal(t, "Launch Plan", loaded.Title)

	loaded.Title = "Launch Plan v2"
	require.NoError(t, secureNew.Save(ctx, "poster", loaded))

	_, err = secureOld.Load(ctx, "poster")
	assert.Error(t, err, "old key alone cannot open data sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainSnapshots(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "poster", secretPoster(t)))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "poster")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestChain_OrdersOutermostFirst(t *testing.T) {
	var calls []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.DocumentStore) ports.DocumentStore {
			return recordingStore{DocumentStore: next, name: name, calls: &calls}
		}
	}
	store := middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	require.NoError(t, store.Save(context.Background(), "poster", secretPoster(t)))
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

type recordingStore struct {
	ports.DocumentStore
	name  string
	calls *[]string
}

func (s recordingStore) Save(ctx context.Context, docID string, doc *domain.DocumentSpec) error {
	*s.calls = append(*s.calls, s.name)
	return s.DocumentStore.Save(ctx, docID, doc)
}
