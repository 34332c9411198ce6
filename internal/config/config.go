// Package config loads VM tuning knobs from environment variables, all
// prefixed EMBER_, so the run/asm commands can adjust garbage collection
// and stack sizing without recompiling.
package config

import "github.com/caarlos0/env/v6"

// Config holds the environment-tunable parameters of a Thread.
type Config struct {
	GCHeapGrowFactor int64 `env:"EMBER_GC_HEAP_GROW_FACTOR" envDefault:"2"`
	GCStress         bool  `env:"EMBER_GC_STRESS" envDefault:"false"`

	// NaNBoxing is read from the environment but nothing in the module uses
	// it: the Value encoding is a Go build-tag choice (-tags nanbox), fixed
	// at compile time, and cannot be switched by an environment variable at
	// process start.
	NaNBoxing bool `env:"EMBER_NAN_BOXING" envDefault:"false"`

	FrameMax   int `env:"EMBER_FRAME_MAX" envDefault:"64"`
	StackSlots int `env:"EMBER_STACK_SLOTS" envDefault:"16384"`
}

// Load reads Config from the process environment, falling back to the
// documented defaults for any variable that isn't set.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
