package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/aretw0/strata/pkg/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data  map[string]*domain.DocumentSpec
	saves int
	mu    sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, docID string, doc *domain.DocumentSpec) error {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.DocumentSpec)
	}
	s.data[docID] = doc.Clone()
	s.saves++
	return nil
}

func (s *SlowStore) Load(ctx context.Context, docID string) (*domain.DocumentSpec, error) {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.data[docID]; ok {
		return doc.Clone(), nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (s *SlowStore) Delete(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, docID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func addPaint(name string) func(context.Context, *strata.Document) error {
	return func(ctx context.Context, doc *strata.Document) error {
		_, err := doc.AddNode(ctx, strata.NodeInit{Kind: domain.KindPaint, Name: name}, doc.Root(), domain.NilNode)
		return err
	}
}

func TestManager_SerializesWrites(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	_, err := manager.CreateWithID(ctx, "race-test", "Race")
	require.NoError(t, err)

	var wg sync.WaitGroup
	concurrentWrites := 10

	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			err := manager.Write(ctx, "race-test", addPaint(fmt.Sprintf("layer-%d", val)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	err = manager.Read(ctx, "race-test", func(doc *strata.Document) error {
		assert.Equal(t, concurrentWrites, doc.Tree().ChildCount(doc.Root()))
		assert.NoError(t, doc.Check())
		return nil
	})
	require.NoError(t, err)

	stored, err := store.Load(ctx, "race-test")
	require.NoError(t, err)
	assert.Len(t, stored.Root.Children, concurrentWrites)
}

func TestManager_ConcurrentReaders(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	_, err := manager.CreateWithID(ctx, "doc", "")
	require.NoError(t, err)
	require.NoError(t, manager.Write(ctx, "doc", addPaint("a")))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.Read(ctx, "doc", func(doc *strata.Document) error {
				view := doc.Tree().Children(doc.Root())
				assert.Equal(t, 1, view.Len())
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestManager_CreateAndReopen(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := session.NewManager(store)
	doc, err := first.Create(ctx, "Poster")
	require.NoError(t, err)
	_, err = uuid.Parse(doc.ID)
	require.NoError(t, err, "generated IDs are UUIDs")

	require.NoError(t, first.Write(ctx, doc.ID, addPaint("bg")))

	// A fresh manager sees the persisted snapshot.
	second := session.NewManager(store)
	err = second.Read(ctx, doc.ID, func(d *strata.Document) error {
		assert.Equal(t, "Poster", d.Title)
		id, err := d.Resolve("bg")
		require.NoError(t, err)
		assert.Equal(t, d.Root(), d.Tree().Parent(id))
		return nil
	})
	require.NoError(t, err)

	_, err = first.CreateWithID(ctx, doc.ID, "dup")
	assert.ErrorIs(t, err, domain.ErrRejected)
}

func TestManager_FailedWriteIsNotPersisted(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	_, err := manager.CreateWithID(ctx, "doc", "")
	require.NoError(t, err)
	saves := store.saves

	boom := errors.New("boom")
	err = manager.Write(ctx, "doc", func(context.Context, *strata.Document) error { return boom })
	assert.ErrorIs(t, err, boom)

	// An unchanged document is not written back either.
	require.NoError(t, manager.Write(ctx, "doc", func(context.Context, *strata.Document) error { return nil }))
	assert.Equal(t, saves, store.saves)
}

func TestManager_DeleteAndClose(t *testing.T) {
	store := memory.NewStore()
	var closed []string
	manager := session.NewManager(store, session.WithCloseHook(func(id string) { closed = append(closed, id) }))
	ctx := context.Background()

	_, err := manager.CreateWithID(ctx, "a", "")
	require.NoError(t, err)
	_, err = manager.CreateWithID(ctx, "b", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, manager.Open())

	require.NoError(t, manager.Close(ctx, "a"))
	assert.Equal(t, []string{"b"}, manager.Open())

	require.NoError(t, manager.Delete(ctx, "b"))
	assert.Empty(t, manager.Open())
	assert.Equal(t, []string{"a", "b"}, closed)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	err = manager.Read(ctx, "b", func(*strata.Document) error { return nil })
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestManager_Import(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	spec := &domain.DocumentSpec{
		Title: "Imported",
		Root: domain.NodeSpec{ID: "root", Kind: domain.KindRoot, Children: []domain.NodeSpec{
			{ID: "bg", Kind: domain.KindPaint},
			{ID: "c1", Kind: domain.KindClone, Source: "bg"},
		}},
	}
	doc, err := manager.Import(ctx, spec)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Empty(t, spec.ID, "the caller's spec is not modified")

	stored, err := manager.Store().Load(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Root.Children, 2)
}

type countingLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	lastKey  string
	lastTTL  time.Duration
	failWith error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.locks++
	l.lastKey, l.lastTTL = key, ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &countingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	_, err := manager.CreateWithID(ctx, "doc", "")
	require.NoError(t, err)
	require.NoError(t, manager.Write(ctx, "doc", addPaint("a")))
	require.NoError(t, manager.Read(ctx, "doc", func(*strata.Document) error { return nil }))

	assert.Equal(t, 2, locker.locks, "only writers take the distributed lock")
	assert.Equal(t, 2, locker.unlocks)
	assert.Equal(t, "doc", locker.lastKey)
	assert.Equal(t, time.Second, locker.lastTTL)

	locker.failWith = errors.New("redis down")
	err = manager.Write(ctx, "doc", addPaint("b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "distributed lock")
}

func TestManager_CanceledContext(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := manager.Write(ctx, "doc", addPaint("a"))
	assert.ErrorIs(t, err, context.Canceled)
}
