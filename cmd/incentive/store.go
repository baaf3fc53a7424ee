package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/warp/incentive-engine/config"
	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store"
	"github.com/warp/incentive-engine/store/memory"
	"github.com/warp/incentive-engine/store/sqlite"
)

// loadDefaults reads the preset file, if any, and applies engine overrides.
func loadDefaults(c *config.Config) (*incentive.Defaults, error) {
	d, err := factory.LoadDefaults(c.Engine.PresetsPath)
	if err != nil {
		return nil, err
	}
	c.Engine.Apply(d)
	return d, nil
}

// openStore opens the configured store.
func openStore(c *config.Config, d *incentive.Defaults) (store.Store, error) {
	switch c.Store.Driver {
	case "memory":
		zap.L().Warn("using in-memory store, data is lost on exit")
		return memory.New(d), nil
	case "sqlite", "":
		if dir := filepath.Dir(c.Store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, eris.Wrapf(err, "create data directory %s", dir)
			}
		}
		st, err := sqlite.New(c.Store.Path, d)
		if err != nil {
			return nil, eris.Wrap(err, "open sqlite store")
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", c.Store.Driver)
	}
}
