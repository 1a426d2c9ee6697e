// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"pagestore/internal/models"
)

func newTestTemplate(name string, updated time.Time) *models.PageTemplate {
	return &models.PageTemplate{
		ID:        "template_test_" + uuid.NewString()[:8],
		Name:      name,
		Slug:      "test",
		Data:      json.RawMessage(`{"sections":[]}`),
		Tags:      []string{"promo"},
		Version:   "1.0.0",
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestPostgresStorePutAndGet(t *testing.T) {
	db := testDB(t)
	s := NewPostgresStore(db)
	ctx := context.Background()

	tmpl := newTestTemplate("Postgres Landing", time.Now().UTC())
	t.Cleanup(func() { cleanTemplates(t, db, tmpl.ID) })

	if err := s.Put(ctx, tmpl); err != nil {
		t.Fatalf("Put: %v", err)
	}

	found, err := s.Get(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found == nil {
		t.Fatal("expected template, got nil")
	}
	if found.Name != tmpl.Name {
		t.Errorf("name: got %q, want %q", found.Name, tmpl.Name)
	}
	if !found.UpdatedAt.Equal(tmpl.UpdatedAt) {
		t.Errorf("updatedAt: got %v, want %v", found.UpdatedAt, tmpl.UpdatedAt)
	}

	// Not found.
	found, err = s.Get(ctx, "template_missing_"+uuid.NewString())
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if found != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestPostgresStoreKeepsDataVerbatim(t *testing.T) {
	db := testDB(t)
	s := NewPostgresStore(db)
	ctx := context.Background()

	tmpl := newTestTemplate("Verbatim", time.Now().UTC())
	// Keys deliberately out of order, with a duplicate, to catch any
	// normalization by the column type.
	tmpl.Data = json.RawMessage(`{"theme":"dark","rows":[{"z":1,"a":2}],"b":true,"b":false}`)
	t.Cleanup(func() { cleanTemplates(t, db, tmpl.ID) })

	if err := s.Put(ctx, tmpl); err != nil {
		t.Fatalf("Put: %v", err)
	}
	found, err := s.Get(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found == nil {
		t.Fatal("expected template, got nil")
	}
	if string(found.Data) != string(tmpl.Data) {
		t.Errorf("data: got %s, want %s", found.Data, tmpl.Data)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, l := range list {
		if l.ID == tmpl.ID && string(l.Data) != string(tmpl.Data) {
			t.Errorf("listed data: got %s, want %s", l.Data, tmpl.Data)
		}
	}
}

func TestPostgresStorePutOverwrites(t *testing.T) {
	db := testDB(t)
	s := NewPostgresStore(db)
	ctx := context.Background()

	tmpl := newTestTemplate("Before", time.Now().UTC())
	t.Cleanup(func() { cleanTemplates(t, db, tmpl.ID) })

	if err := s.Put(ctx, tmpl); err != nil {
		t.Fatalf("Put: %v", err)
	}

	tmpl.Name = "After"
	tmpl.Version = "1.0.1"
	if err := s.Put(ctx, tmpl); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	found, _ := s.Get(ctx, tmpl.ID)
	if found.Name != "After" || found.Version != "1.0.1" {
		t.Errorf("overwrite not applied: got %q %q", found.Name, found.Version)
	}
}

func TestPostgresStoreListOrder(t *testing.T) {
	db := testDB(t)
	s := NewPostgresStore(db)
	ctx := context.Background()

	base := time.Now().UTC()
	older := newTestTemplate("Older", base.Add(-time.Hour))
	newer := newTestTemplate("Newer", base)
	t.Cleanup(func() { cleanTemplates(t, db, older.ID, newer.ID) })

	s.Put(ctx, older)
	s.Put(ctx, newer)

	templates, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	olderIdx, newerIdx := -1, -1
	for i, tmpl := range templates {
		switch tmpl.ID {
		case older.ID:
			olderIdx = i
		case newer.ID:
			newerIdx = i
		}
	}
	if olderIdx < 0 || newerIdx < 0 {
		t.Fatalf("expected both templates in list, got indexes %d and %d", olderIdx, newerIdx)
	}
	if newerIdx > olderIdx {
		t.Error("expected the most recently updated template first")
	}
}

func TestPostgresStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewPostgresStore(db)
	ctx := context.Background()

	tmpl := newTestTemplate("Delete Me", time.Now().UTC())
	t.Cleanup(func() { cleanTemplates(t, db, tmpl.ID) })
	s.Put(ctx, tmpl)

	removed, err := s.Delete(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Error("expected first delete to report removal")
	}

	removed, err = s.Delete(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("Delete again: %v", err)
	}
	if removed {
		t.Error("expected second delete to report nothing removed")
	}
}
