package store

import (
	"os"
	"sync"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/logging"
	"github.com/arthur-debert/linkvault/pkg/store/codec"
)

// Open opens the configured backend. Any failure to bring the store up is
// reported as STORAGE_UNAVAILABLE.
func Open(opts Options) (Backend, error) {
	logger := logging.GetLogger("store")

	factory, err := backends.Get(opts.Backend)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStorageUnavailable, "unknown store backend %q", opts.Backend)
	}
	c, err := codec.ForName(opts.Compression)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStorageUnavailable, "cannot configure store compression")
	}
	if opts.Path == "" {
		return nil, errors.New(errors.ErrStorageUnavailable, "store path is not set")
	}
	if err := os.MkdirAll(opts.Path, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStorageUnavailable, "cannot create store directory %s", opts.Path).
			WithDetail("path", opts.Path)
	}

	backend, err := factory(opts.Path)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrStorageUnavailable, "cannot open %s store at %s", opts.Backend, opts.Path).
			WithDetail("path", opts.Path)
	}
	if err := backend.OpenTree(DefaultTree); err != nil {
		_ = backend.Close()
		return nil, errors.Wrap(err, errors.ErrStorageUnavailable, "cannot open default tree")
	}

	logger.Debug().
		Str("backend", opts.Backend).
		Str("path", opts.Path).
		Str("compression", c.Name()).
		Msg("Record store opened")

	return &compressed{Backend: backend, codec: c}, nil
}

var (
	sharedMu   sync.Mutex
	shared     Backend
	sharedOpts Options
)

// Shared returns the process-wide store, opening it on first use. Later
// calls return the same handle regardless of opts until CloseShared.
func Shared(opts Options) (Backend, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		if opts != sharedOpts {
			logger := logging.GetLogger("store")
			logger.Debug().
				Str("open", sharedOpts.Path).
				Str("requested", opts.Path).
				Msg("Shared store already open, ignoring new options")
		}
		return shared, nil
	}

	backend, err := Open(opts)
	if err != nil {
		return nil, err
	}
	shared = backend
	sharedOpts = opts
	return shared, nil
}

// CloseShared closes the process-wide store if it was opened
func CloseShared() error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		return nil
	}
	err := shared.Close()
	shared = nil
	sharedOpts = Options{}
	return err
}
