// Package engine wires configuration into a fresh IR module: the ambient
// concern spec.md leaves unspecified (§9: "expose a per-call ... fuel
// parameter") but which a complete implementation needs a home for. It
// depends on package ir, never the reverse, so ir's constructors stay
// free to run without any YAML or file-system concern in the loop.
package engine

import (
	"fmt"
	"os"

	"github.com/sunholo/irlang/internal/ir"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of engine tuning knobs (spec.md §4.8/§9).
type Config struct {
	// ReduceFuel bounds Reduce's rewrite-step budget before giving up.
	ReduceFuel int `yaml:"reduce_fuel"`

	// ArenaHint is an optional size hint for the node table's initial
	// capacity, useful when a caller knows roughly how large a term graph
	// it's about to build (avoids repeated map growth on large inputs).
	ArenaHint int `yaml:"arena_hint"`
}

// Default returns the engine's built-in defaults.
func Default() Config {
	return Config{ReduceFuel: 10000, ArenaHint: 4096}
}

// Load reads a YAML config file at path, falling back to Default for any
// field left zero.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("engine: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parsing config %s: %w", path, err)
	}
	if cfg.ReduceFuel <= 0 {
		cfg.ReduceFuel = Default().ReduceFuel
	}
	if cfg.ArenaHint <= 0 {
		cfg.ArenaHint = Default().ArenaHint
	}
	return cfg, nil
}

// NewModule constructs a fresh ir.Module from this engine configuration.
func (c Config) NewModule() *ir.Module {
	return ir.NewModule(ir.Config{ReduceFuel: c.ReduceFuel, ArenaHint: c.ArenaHint})
}
