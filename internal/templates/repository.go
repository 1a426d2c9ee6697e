// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package templates is the page template repository. It assigns identities,
// slugs, versions and timestamps, and layers search, duplication, export and
// import on top of whichever store.Store it is given.
//
// The repository holds no locks. Concurrent updates of one template are
// last-writer-wins unless the caller sets TemplatePatch.ExpectedVersion.
package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"pagestore/internal/ident"
	"pagestore/internal/models"
	"pagestore/internal/slug"
	"pagestore/internal/store"
	"pagestore/internal/version"
)

// Cache is an optional read-through cache for single templates. Failures
// are the cache's own business; it never returns errors.
type Cache interface {
	Get(ctx context.Context, id string) (*models.PageTemplate, bool)
	Set(ctx context.Context, t *models.PageTemplate)
	Invalidate(ctx context.Context, id string)
}

// Repository is the template façade used by the HTTP handlers and the CLI.
type Repository struct {
	store  store.Store
	now    func() time.Time
	newID  ident.Generator
	cache  Cache
	logger *slog.Logger

	// writes counts updates and deletes. Get only fills the cache when no
	// write started while it was reading the store.
	writes atomic.Uint64
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator replaces the default timestamp ID scheme.
func WithIDGenerator(gen ident.Generator) Option {
	return func(r *Repository) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithCache enables read-through caching for Get.
func WithCache(c Cache) Option {
	return func(r *Repository) {
		r.cache = c
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a repository on top of s.
func New(s store.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  s,
		now:    time.Now,
		newID:  ident.Timestamp(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save creates a new template from in. ID, slug, version and timestamps are
// always assigned here.
func (r *Repository) Save(ctx context.Context, in models.TemplateInput) (*models.PageTemplate, error) {
	data, err := normalizeData(in.Data)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	t := &models.PageTemplate{
		ID:          r.newID(),
		Name:        in.Name,
		Slug:        slug.Generate(in.Name),
		Description: in.Description,
		Data:        data,
		Tags:        normalizeTags(in.Tags),
		Category:    in.Category,
		IsPublic:    in.IsPublic,
		Author:      in.Author,
		Version:     version.Initial,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.store.Put(ctx, t); err != nil {
		return nil, &PersistenceError{Op: "save", ID: t.ID, Err: err}
	}

	r.logger.Info("template saved", "id", t.ID, "name", t.Name)
	return t, nil
}

// Get returns the template for id, or (nil, nil) when it does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*models.PageTemplate, error) {
	if r.cache != nil {
		if t, ok := r.cache.Get(ctx, id); ok {
			return t, nil
		}
	}

	seen := r.writes.Load()
	t, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "get", ID: id, Err: err}
	}
	if t == nil {
		return nil, nil
	}
	t.Tags = normalizeTags(t.Tags)

	// Other processes writing to the same store are not covered; their
	// changes show up once the entry expires.
	if r.cache != nil && r.writes.Load() == seen {
		r.cache.Set(ctx, t)
	}
	return t, nil
}

// GetBySlug returns the most recently updated template with the given slug.
// Slugs are not unique; older templates sharing a slug are not reachable
// through this method.
func (r *Repository) GetBySlug(ctx context.Context, s string) (*models.PageTemplate, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if t.Slug == s {
			return t, nil
		}
	}
	return nil, nil
}

// List returns every template, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]*models.PageTemplate, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	for _, t := range all {
		t.Tags = normalizeTags(t.Tags)
	}
	return all, nil
}

// Update merges the fields present in patch into the stored template, bumps
// its patch version and refreshes UpdatedAt. A missing template is never
// created.
func (r *Repository) Update(ctx context.Context, id string, patch models.TemplatePatch) (*models.PageTemplate, error) {
	current, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "update", ID: id, Err: err}
	}
	if current == nil {
		return nil, fmt.Errorf("update %s: %w", id, ErrTemplateNotFound)
	}
	if patch.ExpectedVersion != "" && patch.ExpectedVersion != current.Version {
		return nil, fmt.Errorf("update %s: expected version %s, stored %s: %w",
			id, patch.ExpectedVersion, current.Version, ErrVersionConflict)
	}

	next, err := version.Bump(current.Version)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", id, err)
	}

	updated := current.Clone()
	if patch.Name != nil && *patch.Name != updated.Name {
		updated.Name = *patch.Name
		updated.Slug = slug.Generate(updated.Name)
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.HasData() {
		data, err := normalizeData(patch.Data)
		if err != nil {
			return nil, err
		}
		updated.Data = data
	}
	if patch.Tags != nil {
		updated.Tags = normalizeTags(*patch.Tags)
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if patch.IsPublic != nil {
		updated.IsPublic = *patch.IsPublic
	}
	updated.Tags = normalizeTags(updated.Tags)
	updated.Version = next

	// A clock that moved backwards must not put UpdatedAt before CreatedAt.
	now := r.now().UTC()
	if now.Before(updated.CreatedAt) {
		now = updated.CreatedAt
	}
	updated.UpdatedAt = now

	r.writes.Add(1)
	if err := r.store.Put(ctx, updated); err != nil {
		r.invalidate(ctx, id)
		return nil, &PersistenceError{Op: "update", ID: id, Err: err}
	}
	r.invalidate(ctx, id)

	r.logger.Info("template updated", "id", id, "version", updated.Version)
	return updated, nil
}

// Delete removes the template and reports whether it existed. Deleting a
// missing template is not an error.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	r.writes.Add(1)
	removed, err := r.store.Delete(ctx, id)
	r.invalidate(ctx, id)
	if err != nil {
		return false, &PersistenceError{Op: "delete", ID: id, Err: err}
	}

	if removed {
		r.logger.Info("template deleted", "id", id)
	}
	return removed, nil
}

// Duplicate saves a copy of the template under a fresh identity. The copy
// starts at the initial version and is never public.
func (r *Repository) Duplicate(ctx context.Context, id string) (*models.PageTemplate, error) {
	src, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("duplicate %s: %w", id, ErrTemplateNotFound)
	}

	in := models.TemplateInput{
		Name:        src.Name + " (Copy)",
		Description: src.Description,
		Data:        src.Data,
		Tags:        slices.Clone(src.Tags),
		Category:    src.Category,
		IsPublic:    false,
		Author:      src.Author,
	}
	if in.Description != "" {
		in.Description += " (Copy)"
	}
	return r.Save(ctx, in)
}

// Publish marks the template public.
func (r *Repository) Publish(ctx context.Context, id string) (*models.PageTemplate, error) {
	return r.setPublic(ctx, id, true)
}

// Unpublish marks the template private.
func (r *Repository) Unpublish(ctx context.Context, id string) (*models.PageTemplate, error) {
	return r.setPublic(ctx, id, false)
}

// setPublic leaves a template whose flag already matches untouched, so
// repeated publishes do not bump the version.
func (r *Repository) setPublic(ctx context.Context, id string, public bool) (*models.PageTemplate, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("set visibility %s: %w", id, ErrTemplateNotFound)
	}
	if current.IsPublic == public {
		return current, nil
	}
	return r.Update(ctx, id, models.TemplatePatch{IsPublic: &public})
}

func (r *Repository) invalidate(ctx context.Context, id string) {
	if r.cache != nil {
		r.cache.Invalidate(ctx, id)
	}
}

// normalizeData compacts the payload. An empty payload is stored as null.
func normalizeData(data json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: data is not valid JSON: %v", ErrInvalidTemplateFormat, err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}
