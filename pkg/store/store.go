package store

import (
	"strings"

	"github.com/arthur-debert/linkvault/pkg/config"
	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/registry"
)

// DefaultTree is the reserved namespace every backend creates on open. It
// never names a batch.
const DefaultTree = "__default"

var (
	// ErrKeyNotFound is returned by Get for a missing key
	ErrKeyNotFound = errors.New(errors.ErrRecordNotFound, "key not found")
	// ErrTreeNotFound is returned when a tree was never opened or was dropped
	ErrTreeNotFound = errors.New(errors.ErrRecordNotFound, "tree not found")
)

// Backend is a durable namespaced ordered key/value store. Implementations
// must be safe for concurrent use.
type Backend interface {
	// OpenTree creates the tree if it does not exist
	OpenTree(name string) error
	// HasTree reports whether the tree exists
	HasTree(name string) (bool, error)
	// Put stores value under key, creating the tree if needed.
	// An existing value is overwritten.
	Put(tree string, key, value []byte) error
	// Get returns ErrKeyNotFound or ErrTreeNotFound when nothing is stored
	Get(tree string, key []byte) ([]byte, error)
	// Delete removes key from tree. A missing key or tree is not an error.
	Delete(tree string, key []byte) error
	// Iterate calls fn for every pair of the tree in key order. Returning an
	// error from fn stops the iteration and is passed back.
	Iterate(tree string, fn func(key, value []byte) error) error
	// TreeNames lists every tree, reserved ones included, in name order
	TreeNames() ([]string, error)
	// DropTree removes the tree and all its pairs. Dropping a missing tree
	// is not an error.
	DropTree(name string) error
	Close() error
}

// Factory opens a backend rooted at dir
type Factory func(dir string) (Backend, error)

// Options selects and locates a backend
type Options struct {
	Backend     string
	Path        string
	Compression string
}

// OptionsFromConfig extracts store options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Backend:     cfg.Store.Backend,
		Path:        cfg.Store.Path,
		Compression: cfg.Store.Compression,
	}
}

var backends = registry.NewNamed[Factory]("store backend")

// Register makes a backend available to Open under name
func Register(name string, factory Factory) {
	registry.MustRegister(backends, name, factory)
}

// Backends lists the registered backend names
func Backends() []string {
	return backends.List()
}

// ValidateTreeName rejects names a backend cannot store
func ValidateTreeName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "tree name cannot be empty")
	}
	if strings.ContainsRune(name, 0) {
		return errors.New(errors.ErrInvalidInput, "tree name cannot contain NUL").
			WithDetail("tree", name)
	}
	return nil
}
