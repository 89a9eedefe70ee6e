package config

import (
	"runtime"
)

// Link holds link engine settings
type Link struct {
	// IncludeSymlinks relinks symbolic links met while walking directory sources
	IncludeSymlinks bool `koanf:"include_symlinks" yaml:"include_symlinks" toml:"include_symlinks"`
	// Workers is the fan-out pool size; 0 means runtime.NumCPU()
	Workers int `koanf:"workers" yaml:"workers" toml:"workers"`
}

// Store holds record store settings
type Store struct {
	Backend     string `koanf:"backend" yaml:"backend" toml:"backend"`
	Compression string `koanf:"compression" yaml:"compression" toml:"compression"`
	Path        string `koanf:"path" yaml:"path" toml:"path"`
}

// IDs holds identifier lengths. BatchLength doubles as the structural check
// applied when listing batch namespaces, so it must differ from FilesLength.
type IDs struct {
	BatchLength int `koanf:"batch_length" yaml:"batch_length" toml:"batch_length"`
	FilesLength int `koanf:"files_length" yaml:"files_length" toml:"files_length"`
	EntryDigits int `koanf:"entry_digits" yaml:"entry_digits" toml:"entry_digits"`
}

// Config is the main configuration structure
type Config struct {
	Link  Link  `koanf:"link" yaml:"link" toml:"link"`
	Store Store `koanf:"store" yaml:"store" toml:"store"`
	IDs   IDs   `koanf:"ids" yaml:"ids" toml:"ids"`
}

// Backend names
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Compression names
const (
	CompressionZstd   = "zstd"
	CompressionSnappy = "snappy"
	CompressionGzip   = "gzip"
	CompressionNone   = "none"
)

// Default returns the embedded defaults without reading user files or env
func Default() *Config {
	cfg, err := loadFrom(nil, false)
	if err != nil {
		// The embedded file is part of the binary; keep a literal fallback anyway.
		return &Config{
			Store: Store{Backend: BackendBadger, Compression: CompressionZstd},
			IDs:   IDs{BatchLength: 6, FilesLength: 16, EntryDigits: 8},
		}
	}
	return cfg
}

// WorkerCount returns the effective pool size
func (c *Config) WorkerCount() int {
	if c.Link.Workers > 0 {
		return c.Link.Workers
	}
	return runtime.NumCPU()
}
