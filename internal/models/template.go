// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the page template record and the inputs the
// repository accepts for creating, patching and searching templates.
package models

import (
	"encoding/json"
	"slices"
	"time"
)

// PageTemplate is a saved, versioned page layout produced by the page
// builder. Data is the editor's serialized layout and is never inspected by
// the storage layer.
type PageTemplate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data"`
	Tags        []string        `json:"tags"`
	Category    string          `json:"category,omitempty"`
	IsPublic    bool            `json:"isPublic"`
	Author      string          `json:"author,omitempty"`
	Version     string          `json:"version"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate the result without
// touching a cached or stored value.
func (t *PageTemplate) Clone() *PageTemplate {
	if t == nil {
		return nil
	}
	c := *t
	c.Data = slices.Clone(t.Data)
	c.Tags = slices.Clone(t.Tags)
	return &c
}

// HasTag reports whether tag is one of the template's tags (exact match).
func (t *PageTemplate) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// TemplateInput holds the caller-supplied fields of a new template. Identity,
// slug, version and timestamps are always assigned by the repository.
type TemplateInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data"`
	Tags        []string        `json:"tags,omitempty"`
	Category    string          `json:"category,omitempty"`
	IsPublic    bool            `json:"isPublic,omitempty"`
	Author      string          `json:"author,omitempty"`
}

// TemplatePatch lists the fields an update may change. Nil fields are left
// untouched. Author is set once at creation and cannot be patched.
type TemplatePatch struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Tags        *[]string       `json:"tags,omitempty"`
	Category    *string         `json:"category,omitempty"`
	IsPublic    *bool           `json:"isPublic,omitempty"`

	// ExpectedVersion enables an optimistic concurrency check when set.
	ExpectedVersion string `json:"expectedVersion,omitempty"`
}

// HasData reports whether the patch carries a replacement payload. A JSON
// null is treated the same as an absent field.
func (p TemplatePatch) HasData() bool {
	return len(p.Data) > 0 && string(p.Data) != "null"
}

// SearchFilter narrows a search. An empty Category matches every category;
// every entry in Tags must be present on a template for it to match.
type SearchFilter struct {
	Category string
	Tags     []string
}
