package query

import (
	"errors"
	"runtime"
)

type Config struct {
	//required fields
	Path string

	Threads   int    // query threads (default: NumCPU)
	MaxMemory string // DuckDB memory cap (default: "1GB")
}

// Validate checks required fields only.
func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.New("Path is required")
	}
	return nil
}

// WithDefaults returns a copy of Config with sane defaults applied.
func (c *Config) WithDefaults() Config {
	cfg := *c

	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
	if cfg.MaxMemory == "" {
		cfg.MaxMemory = "1GB"
	}

	return cfg
}
