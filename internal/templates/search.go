// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package templates

import (
	"context"
	"strings"

	"pagestore/internal/models"
)

// Search returns the templates matching query and filter, in List order.
// The query is a case-insensitive substring match against name, description
// and tags; an empty query matches everything. Category must match exactly,
// and every filter tag must be present on the template.
func (r *Repository) Search(ctx context.Context, query string, filter models.SearchFilter) ([]*models.PageTemplate, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	matches := make([]*models.PageTemplate, 0, len(all))
	for _, t := range all {
		if matchesQuery(t, q) && matchesFilter(t, filter) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

func matchesQuery(t *models.PageTemplate, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func matchesFilter(t *models.PageTemplate, f models.SearchFilter) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	for _, tag := range f.Tags {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}
