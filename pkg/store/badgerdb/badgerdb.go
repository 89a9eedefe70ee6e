// Package badgerdb is the badger-backed record store, the default backend.
//
// All trees share one badger database. A tree is a key prefix; a registry
// key per tree records that the tree exists even while it is empty.
package badgerdb

import (
	"bytes"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dgraph-io/badger"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/store"
)

// Name is the store.backend value selecting this backend
const Name = "badger"

// subdirectory of store.path holding the badger files
const dbDir = "badger"

// deletes per transaction when dropping a tree
const dropBatch = 1000

var (
	treePref = []byte("tree:")
	dataPref = []byte("kv:")
)

func init() {
	store.Register(Name, func(dir string) (store.Backend, error) {
		return Open(filepath.Join(dir, dbDir))
	})
}

// DB is a store.Backend on top of badger
type DB struct {
	db    *badger.DB
	close sync.Once
}

// Open opens or creates a badger database in dir
func Open(dir string) (*DB, error) {
	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStorageUnavailable, "cannot open badger database at %s", dir).
			WithDetail("path", dir)
	}
	return &DB{db: db}, nil
}

func treeKey(name string) []byte {
	return append(append([]byte(nil), treePref...), name...)
}

func treePrefix(name string) []byte {
	p := append(append([]byte(nil), dataPref...), name...)
	return append(p, 0)
}

func dataKey(tree string, key []byte) []byte {
	return append(treePrefix(tree), key...)
}

func rewriteError(err error) error {
	if err == badger.ErrKeyNotFound {
		return store.ErrKeyNotFound
	}
	return errors.Wrap(err, errors.ErrStorageUnavailable, "badger operation failed")
}

func (d *DB) OpenTree(name string) error {
	if err := store.ValidateTreeName(name); err != nil {
		return err
	}
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(treeKey(name), []byte{})
	})
	if err != nil {
		return rewriteError(err)
	}
	return nil
}

func (d *DB) HasTree(name string) (bool, error) {
	var found bool
	err := d.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(treeKey(name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, rewriteError(err)
	}
	return found, nil
}

func (d *DB) Put(tree string, key, value []byte) error {
	if err := store.ValidateTreeName(tree); err != nil {
		return err
	}
	if len(key) == 0 {
		return errors.New(errors.ErrInvalidInput, "key cannot be empty")
	}
	err := d.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(treeKey(tree), []byte{}); err != nil {
			return err
		}
		return txn.Set(dataKey(tree, key), value)
	})
	if err != nil {
		return rewriteError(err)
	}
	return nil
}

func (d *DB) Get(tree string, key []byte) ([]byte, error) {
	var value []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dataKey(tree, key))
		if err == badger.ErrKeyNotFound {
			if _, terr := txn.Get(treeKey(tree)); terr == badger.ErrKeyNotFound {
				return store.ErrTreeNotFound
			}
			return store.ErrKeyNotFound
		}
		if err != nil {
			return err
		}
		v, err := item.Value()
		if err != nil {
			return err
		}
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrRecordNotFound) {
			return nil, err
		}
		return nil, rewriteError(err)
	}
	return value, nil
}

func (d *DB) Delete(tree string, key []byte) error {
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(dataKey(tree, key))
	})
	if err != nil {
		return rewriteError(err)
	}
	return nil
}

type pair struct {
	key, value []byte
}

// Pairs are collected inside the read transaction and handed to fn after it
// ends, so fn may write to the store.
func (d *DB) Iterate(tree string, fn func(key, value []byte) error) error {
	var pairs []pair
	err := d.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(treeKey(tree)); err != nil {
			if err == badger.ErrKeyNotFound {
				return store.ErrTreeNotFound
			}
			return err
		}

		prefix := treePrefix(tree)
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
		})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			v, err := item.Value()
			if err != nil {
				return err
			}
			pairs = append(pairs, pair{
				key:   append([]byte(nil), bytes.TrimPrefix(item.Key(), prefix)...),
				value: append([]byte(nil), v...),
			})
		}
		return nil
	})
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrRecordNotFound) {
			return err
		}
		return rewriteError(err)
	}

	for _, p := range pairs {
		if err := fn(p.key, p.value); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) TreeNames() ([]string, error) {
	var names []string
	err := d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		for it.Seek(treePref); it.ValidForPrefix(treePref); it.Next() {
			names = append(names, string(bytes.TrimPrefix(it.Item().Key(), treePref)))
		}
		return nil
	})
	if err != nil {
		return nil, rewriteError(err)
	}
	sort.Strings(names)
	return names, nil
}

// DropTree deletes in fixed-size transactions so large trees stay under
// badger's transaction size limit. The registry key goes last: a drop that
// fails half way leaves the tree listed and can be retried.
func (d *DB) DropTree(name string) error {
	var keys [][]byte
	err := d.db.View(func(txn *badger.Txn) error {
		prefix := treePrefix(name)
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, append([]byte(nil), it.Item().Key()...))
		}
		return nil
	})
	if err != nil {
		return rewriteError(err)
	}
	keys = append(keys, treeKey(name))

	for start := 0; start < len(keys); start += dropBatch {
		end := start + dropBatch
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]
		err := d.db.Update(func(txn *badger.Txn) error {
			for _, k := range chunk {
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return rewriteError(err)
		}
	}
	return nil
}

func (d *DB) Close() error {
	var err error
	d.close.Do(func() {
		if cerr := d.db.Close(); cerr != nil {
			err = errors.Wrap(cerr, errors.ErrStorageUnavailable, "cannot close badger database")
		}
	})
	return err
}
