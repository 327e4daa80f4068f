package cli

import (
	"fmt"

	"github.com/aretw0/strata/internal/config"
	"github.com/aretw0/strata/pkg/adapters/file"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/adapters/redis"
	"github.com/aretw0/strata/pkg/persistence/middleware"
	"github.com/aretw0/strata/pkg/ports"
)

// Backend bundles the store selected by the configuration with the optional
// distributed locker that goes with it.
type Backend struct {
	Store  ports.DocumentStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the connections held by the backend.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend connects to the store named by cfg.Store.Backend, sealing
// snapshots when an encryption key is configured.
func OpenBackend(cfg config.Config) (*Backend, error) {
	b, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Encryption.Enabled() {
		active, fallback, err := cfg.Store.Encryption.Keys()
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Store = middleware.Chain(b.Store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	return b, nil
}

func openBackend(cfg config.Config) (*Backend, error) {
	switch cfg.Store.Backend {
	case "memory":
		return &Backend{Store: memory.NewStore()}, nil
	case "", "file":
		return &Backend{Store: file.New(cfg.Store.Path, file.WithFormat(file.Format(cfg.Store.Format)))}, nil
	case "redis":
		rc := cfg.Store.Redis
		prefix := rc.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		store := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithTTL(rc.TTL), redis.WithPrefix(prefix))
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), prefix),
			close:  store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
