// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store defines the contract every template backing store satisfies
// and provides the PostgreSQL implementation. The embedded key/value store
// lives in store/local and the object storage adapter in internal/storage.
package store

import (
	"context"
	"slices"
	"strings"

	"pagestore/internal/models"
)

// Store persists whole template records keyed by ID.
type Store interface {
	// Put inserts or overwrites the record stored under t.ID.
	Put(ctx context.Context, t *models.PageTemplate) error

	// Get returns the record for id, or (nil, nil) when it does not exist.
	Get(ctx context.Context, id string) (*models.PageTemplate, error)

	// List returns every stored record, most recently updated first.
	List(ctx context.Context) ([]*models.PageTemplate, error)

	// Delete removes the record for id and reports whether one existed.
	// Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) (bool, error)

	// Close releases the underlying connection or database handle.
	Close() error
}

// SortByRecent orders templates by UpdatedAt descending. Ties are broken by
// ID so every backend returns the same order for the same data.
func SortByRecent(templates []*models.PageTemplate) {
	slices.SortStableFunc(templates, func(a, b *models.PageTemplate) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
