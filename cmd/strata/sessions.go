package main

import (
	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/pkg/session"
)

// openSessions connects the configured backend and builds a session manager
// whose documents get the CLI options plus whatever listeners extra adds.
func openSessions(extra func(id string) []strata.Option, opts ...session.Option) (*session.Manager, *cli.Backend, error) {
	backend, err := cli.OpenBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	base := cli.DocumentOptions(cfg, logger)
	opts = append([]session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Store.Redis.LockTTL),
		session.WithDocumentOptions(func(id string) []strata.Option {
			out := append([]strata.Option{}, base...)
			if extra != nil {
				out = append(out, extra(id)...)
			}
			return out
		}),
	}, opts...)
	if backend.Locker != nil {
		opts = append(opts, session.WithLocker(backend.Locker))
	}
	return session.NewManager(backend.Store, opts...), backend, nil
}
