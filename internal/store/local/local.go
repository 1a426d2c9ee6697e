// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package local implements the template store on an embedded BadgerDB
// database. Each template is kept under its own key, and an index key lists
// every stored ID so templates can be enumerated without a prefix scan.
//
// Every write or delete updates the record and the index in a single Badger
// transaction, so the two can never diverge, even if the process dies
// mid-operation.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"pagestore/internal/models"
	"pagestore/internal/store"
)

const (
	recordPrefix = "tpl:rec:"
	indexKey     = "tpl:index"

	// maxConflictRetries bounds how often a write is replayed after a
	// concurrent transaction touched the index first.
	maxConflictRetries = 5
)

// Store is a BadgerDB-backed store.Store.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a store in the directory at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("local store path is required")
	}
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create local store dir: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat local store dir: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("%s is not a directory", path)
	}
	return open(badger.DefaultOptions(path))
}

// OpenInMemory opens a store that lives only in memory.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Store, error) {
	logger := slog.Default().With("component", "local-store")
	opts.Logger = &badgerLogger{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes the record and, for new IDs, appends it to the index.
func (s *Store) Put(ctx context.Context, t *models.PageTemplate) error {
	value, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template %s: %w", t.ID, err)
	}

	err = s.update(ctx, func(txn *badger.Txn) error {
		ids, err := readIndex(txn)
		if err != nil {
			return err
		}
		if err := txn.Set(recordKey(t.ID), value); err != nil {
			return err
		}
		if slices.Contains(ids, t.ID) {
			return nil
		}
		return writeIndex(txn, append(ids, t.ID))
	})
	if err != nil {
		return fmt.Errorf("put template %s: %w", t.ID, err)
	}
	return nil
}

// Get returns the template for id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*models.PageTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result *models.PageTemplate
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		result, err = readRecord(txn, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return result, nil
}

// List reads the index and loads every record it names.
func (s *Store) List(ctx context.Context) ([]*models.PageTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var templates []*models.PageTemplate
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := readIndex(txn)
		if err != nil {
			return err
		}
		templates = make([]*models.PageTemplate, 0, len(ids))
		for _, id := range ids {
			t, err := readRecord(txn, id)
			if err != nil {
				return err
			}
			if t == nil {
				// Only reachable with a database written by something else.
				s.logger.Warn("index entry without record", "id", id)
				continue
			}
			templates = append(templates, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	store.SortByRecent(templates)
	return templates, nil
}

// Delete removes the record and its index entry.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := s.update(ctx, func(txn *badger.Txn) error {
		removed = false
		_, err := txn.Get(recordKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		ids, err := readIndex(txn)
		if err != nil {
			return err
		}
		if err := txn.Delete(recordKey(id)); err != nil {
			return err
		}
		removed = true
		return writeIndex(txn, slices.DeleteFunc(ids, func(v string) bool { return v == id }))
	})
	if err != nil {
		return false, fmt.Errorf("delete template %s: %w", id, err)
	}
	return removed, nil
}

// update runs fn in a read-write transaction, replaying it when Badger
// reports a conflict with a concurrent writer.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug("transaction conflict, retrying", "attempt", attempt)
	}
	return err
}

func recordKey(id string) []byte {
	return []byte(recordPrefix + id)
}

func readRecord(txn *badger.Txn, id string) (*models.PageTemplate, error) {
	item, err := txn.Get(recordKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var t models.PageTemplate
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &t)
	})
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", id, err)
	}
	return &t, nil
}

func readIndex(txn *badger.Txn) ([]string, error) {
	item, err := txn.Get([]byte(indexKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &ids)
	})
	if err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return ids, nil
}

func writeIndex(txn *badger.Txn, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	val, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return txn.Set([]byte(indexKey), val)
}
