/*
Package factory constructs the configured storage backend.

PURPOSE:
  The one place the sqlite-vs-remote decision is made, at process start.
  Everything downstream holds a storage.Adapter and never learns which
  variant is behind it.
*/
package factory

import (
	"fmt"

	"github.com/warp/pto-scheduler/config"
	"github.com/warp/pto-scheduler/storage"
	"github.com/warp/pto-scheduler/storage/remote"
	"github.com/warp/pto-scheduler/storage/sqlite"
)

// New builds the adapter selected by cfg.Backend.
func New(cfg config.Storage) (storage.Adapter, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlite.New(cfg.SQLite.Path, cfg.Timeout)
	case config.BackendRemote:
		return remote.New(cfg.Remote, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
