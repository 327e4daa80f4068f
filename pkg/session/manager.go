package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL is the lease of the distributed lock taken by Write.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the document lock and its reference count.
type lockEntry struct {
	mu   sync.RWMutex
	refs int
}

// Manager orchestrates access to documents, ensuring one writer at a time.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.DocumentStore

	mu    sync.Mutex            // guards locks and open
	locks map[string]*lockEntry // active locks
	open  map[string]*strata.Document

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	docOpts func(id string) []strata.Option
	onClose func(id string)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking around writes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of the distributed lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDocumentOptions supplies the options every opened document is built with,
// e.g. a per-document listener.
func WithDocumentOptions(fn func(id string) []strata.Option) Option {
	return func(m *Manager) {
		m.docOpts = fn
	}
}

// WithCloseHook is called after a document leaves the manager.
func WithCloseHook(fn func(id string)) Option {
	return func(m *Manager) {
		m.onClose = fn
	}
}

// NewManager creates a new Manager persisting to store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		open:    make(map[string]*strata.Document),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release(docID) after unlocking.
func (m *Manager) acquire(docID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[docID]
	if !exists {
		entry = &lockEntry{}
		m.locks[docID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry when it reaches zero.
func (m *Manager) release(docID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[docID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, docID)
	}
}

func (m *Manager) options(id string) []strata.Option {
	opts := []strata.Option{strata.WithLogger(m.logger)}
	if m.docOpts != nil {
		opts = append(opts, m.docOpts(id)...)
	}
	return opts
}

// document returns the open document, loading it from the store on first use.
// The caller holds the document lock.
func (m *Manager) document(ctx context.Context, docID string) (*strata.Document, error) {
	m.mu.Lock()
	doc, ok := m.open[docID]
	m.mu.Unlock()
	if ok {
		return doc, nil
	}

	spec, err := m.store.Load(ctx, docID)
	if err != nil {
		return nil, err
	}
	loaded, err := strata.Open(spec, m.options(docID)...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Concurrent readers may both load; the first one wins.
	if doc, ok := m.open[docID]; ok {
		return doc, nil
	}
	m.open[docID] = loaded
	return loaded, nil
}

// Create starts a new empty document with a random ID and persists it.
func (m *Manager) Create(ctx context.Context, title string) (*strata.Document, error) {
	return m.CreateWithID(ctx, uuid.NewString(), title)
}

// CreateWithID starts a new empty document. It fails if the ID is taken.
func (m *Manager) CreateWithID(ctx context.Context, docID, title string) (*strata.Document, error) {
	var doc *strata.Document
	err := m.withLock(ctx, docID, true, func(ctx context.Context) error {
		if _, err := m.document(ctx, docID); err == nil {
			return fmt.Errorf("%w: document %q already exists", domain.ErrRejected, docID)
		} else if !errors.Is(err, domain.ErrDocumentNotFound) {
			return fmt.Errorf("failed to check document existence: %w", err)
		}

		doc = strata.New(docID, append(m.options(docID), strata.WithTitle(title))...)
		if err := doc.Save(ctx, m.store); err != nil {
			return fmt.Errorf("failed to initialize document: %w", err)
		}

		m.mu.Lock()
		m.open[docID] = doc
		m.mu.Unlock()
		return nil
	})
	return doc, err
}

// Import stores spec and opens it, replacing any open document with the same ID.
func (m *Manager) Import(ctx context.Context, spec *domain.DocumentSpec) (*strata.Document, error) {
	if spec.ID == "" {
		spec = spec.Clone()
		spec.ID = uuid.NewString()
	}
	var doc *strata.Document
	err := m.withLock(ctx, spec.ID, true, func(ctx context.Context) error {
		var err error
		doc, err = strata.Open(spec, m.options(spec.ID)...)
		if err != nil {
			return err
		}
		if err := doc.Save(ctx, m.store); err != nil {
			return err
		}
		m.mu.Lock()
		m.open[spec.ID] = doc
		m.mu.Unlock()
		return nil
	})
	return doc, err
}

// Read runs fn with the document under the read lock. fn must not mutate it.
func (m *Manager) Read(ctx context.Context, docID string, fn func(*strata.Document) error) error {
	return m.withLock(ctx, docID, false, func(ctx context.Context) error {
		doc, err := m.document(ctx, docID)
		if err != nil {
			return err
		}
		return fn(doc)
	})
}

// Write runs fn with the document under the write lock and persists the result
// when fn succeeds and left the history modified.
func (m *Manager) Write(ctx context.Context, docID string, fn func(context.Context, *strata.Document) error) error {
	return m.withLock(ctx, docID, true, func(ctx context.Context) error {
		doc, err := m.document(ctx, docID)
		if err != nil {
			return err
		}
		if err := fn(ctx, doc); err != nil {
			return err
		}
		if !doc.Modified() {
			return nil
		}
		return doc.Save(ctx, m.store)
	})
}

// Close drops the document from memory. Its stored snapshot is kept.
func (m *Manager) Close(ctx context.Context, docID string) error {
	return m.withLock(ctx, docID, true, func(context.Context) error {
		m.forget(docID)
		return nil
	})
}

// Delete closes the document and removes it from the store.
func (m *Manager) Delete(ctx context.Context, docID string) error {
	return m.withLock(ctx, docID, true, func(ctx context.Context) error {
		m.forget(docID)
		return m.store.Delete(ctx, docID)
	})
}

func (m *Manager) forget(docID string) {
	m.mu.Lock()
	_, ok := m.open[docID]
	delete(m.open, docID)
	m.mu.Unlock()
	if ok && m.onClose != nil {
		m.onClose(docID)
	}
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Open reports the IDs of the documents held in memory.
func (m *Manager) Open() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.open))
	for id := range m.open {
		ids = append(ids, id)
	}
	return ids
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// withLock executes fn while holding the document lock. Writers also take the
// distributed lock when one is configured.
func (m *Manager) withLock(ctx context.Context, docID string, write bool, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := m.acquire(docID)
	if write {
		entry.mu.Lock()
	} else {
		entry.mu.RLock()
	}
	defer func() {
		if write {
			entry.mu.Unlock()
		} else {
			entry.mu.RUnlock()
		}
		m.release(docID)
	}()

	if write && m.locker != nil {
		unlock, err := m.locker.Lock(ctx, docID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"document", docID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
