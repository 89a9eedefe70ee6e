// Package sqlitedb is the SQLite-backed record store, selected with
// store.backend = "sqlite". It uses the pure-Go modernc.org/sqlite driver, so
// no cgo toolchain is needed.
package sqlitedb

import (
	"database/sql"
	_ "embed"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/store"
)

// Name is the store.backend value selecting this backend
const Name = "sqlite"

// FileName is the database file created under store.path
const FileName = "linkvault.sqlite"

//go:embed schema.sql
var schemaSQL string

func init() {
	store.Register(Name, func(dir string) (store.Backend, error) {
		return Open(filepath.Join(dir, FileName))
	})
}

// DB is a store.Backend on top of a single SQLite file
type DB struct {
	db    *sql.DB
	close sync.Once
}

// Open opens or creates the database file at path
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable(err, path)
	}
	// One connection serialises writers; SQLite allows only one anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, unavailable(err, path)
	}
	return &DB{db: db}, nil
}

func unavailable(err error, path string) error {
	return errors.Wrapf(err, errors.ErrStorageUnavailable, "cannot open sqlite database at %s", path).
		WithDetail("path", path)
}

func wrap(err error, op string) error {
	return errors.Wrapf(err, errors.ErrStorageUnavailable, "sqlite %s failed", op)
}

func (d *DB) OpenTree(name string) error {
	if err := store.ValidateTreeName(name); err != nil {
		return err
	}
	if _, err := d.db.Exec(`INSERT OR IGNORE INTO trees (name) VALUES (?)`, name); err != nil {
		return wrap(err, "open tree")
	}
	return nil
}

func (d *DB) HasTree(name string) (bool, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM trees WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, wrap(err, "has tree")
	}
	return n > 0, nil
}

func (d *DB) Put(tree string, key, value []byte) error {
	if err := store.ValidateTreeName(tree); err != nil {
		return err
	}
	if len(key) == 0 {
		return errors.New(errors.ErrInvalidInput, "key cannot be empty")
	}
	tx, err := d.db.Begin()
	if err != nil {
		return wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO trees (name) VALUES (?)`, tree); err != nil {
		return wrap(err, "put")
	}
	if _, err := tx.Exec(
		`INSERT INTO entries (tree, entry_key, entry_value) VALUES (?, ?, ?)
		 ON CONFLICT (tree, entry_key) DO UPDATE SET entry_value = excluded.entry_value`,
		tree, key, value,
	); err != nil {
		return wrap(err, "put")
	}
	if err := tx.Commit(); err != nil {
		return wrap(err, "commit")
	}
	return nil
}

func (d *DB) Get(tree string, key []byte) ([]byte, error) {
	var value []byte
	err := d.db.QueryRow(`SELECT entry_value FROM entries WHERE tree = ? AND entry_key = ?`, tree, key).Scan(&value)
	if err == sql.ErrNoRows {
		ok, herr := d.HasTree(tree)
		if herr != nil {
			return nil, herr
		}
		if !ok {
			return nil, store.ErrTreeNotFound
		}
		return nil, store.ErrKeyNotFound
	}
	if err != nil {
		return nil, wrap(err, "get")
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (d *DB) Delete(tree string, key []byte) error {
	if _, err := d.db.Exec(`DELETE FROM entries WHERE tree = ? AND entry_key = ?`, tree, key); err != nil {
		return wrap(err, "delete")
	}
	return nil
}

type pair struct {
	key, value []byte
}

// Rows are collected before fn runs: with a single connection, fn could not
// touch the store while the result set is open.
func (d *DB) Iterate(tree string, fn func(key, value []byte) error) error {
	ok, err := d.HasTree(tree)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrTreeNotFound
	}

	rows, err := d.db.Query(`SELECT entry_key, entry_value FROM entries WHERE tree = ? ORDER BY entry_key`, tree)
	if err != nil {
		return wrap(err, "iterate")
	}
	var pairs []pair
	for rows.Next() {
		var p pair
		if err := rows.Scan(&p.key, &p.value); err != nil {
			_ = rows.Close()
			return wrap(err, "iterate")
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return wrap(err, "iterate")
	}
	_ = rows.Close()

	for _, p := range pairs {
		if err := fn(p.key, p.value); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) TreeNames() ([]string, error) {
	rows, err := d.db.Query(`SELECT name FROM trees ORDER BY name`)
	if err != nil {
		return nil, wrap(err, "list trees")
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrap(err, "list trees")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "list trees")
	}
	return names, nil
}

func (d *DB) DropTree(name string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM entries WHERE tree = ?`, name); err != nil {
		return wrap(err, "drop tree")
	}
	if _, err := tx.Exec(`DELETE FROM trees WHERE name = ?`, name); err != nil {
		return wrap(err, "drop tree")
	}
	if err := tx.Commit(); err != nil {
		return wrap(err, "commit")
	}
	return nil
}

func (d *DB) Close() error {
	var err error
	d.close.Do(func() {
		if cerr := d.db.Close(); cerr != nil {
			err = wrap(cerr, "close")
		}
	})
	return err
}
