package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshuapare/pkgdep/internal/config"
	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/registry/memstore"
	"github.com/joshuapare/pkgdep/pkg/registry/sqlstore"
	"github.com/joshuapare/pkgdep/pkg/types"
)

// store is an opened backend together with how to persist and release it.
type store struct {
	backend registry.Backend
	save    func() error
	close   func() error
}

func nop() error { return nil }

func openStore(cfg config.Config) (*store, error) {
	path := cfg.StorePath()
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return &store{backend: memstore.New(), save: nop, close: nop}, nil

	case config.BackendYAML:
		ms, err := memstore.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return &store{
			backend: ms,
			save:    func() error { return ms.SaveFile(path) },
			close:   nop,
		}, nil

	case config.BackendSQLite:
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("creating store directory: %w", err)
			}
		}
		db, err := sqlstore.Open(path)
		if err != nil {
			return nil, err
		}
		return &store{backend: db, save: nop, close: db.Close}, nil

	case config.BackendRegistry:
		return openNativeStore()

	default:
		return nil, &types.Error{Kind: types.ErrKindNotSupported, Msg: fmt.Sprintf("store backend %q", cfg.Store.Backend)}
	}
}
