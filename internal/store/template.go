// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"pagestore/internal/models"
)

// PostgresStore keeps each template as a JSON document in the
// page_templates table. Lookup columns are denormalized from the document
// on every write.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a PostgresStore with the given database connection.
// The schema must already be migrated (see database.Migrate).
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Put upserts the template document.
func (s *PostgresStore) Put(ctx context.Context, t *models.PageTemplate) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template %s: %w", t.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO page_templates (id, slug, name, category, updated_at, document)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			slug = EXCLUDED.slug,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			updated_at = EXCLUDED.updated_at,
			document = EXCLUDED.document
	`, t.ID, t.Slug, t.Name, t.Category, t.UpdatedAt, string(doc))
	if err != nil {
		return fmt.Errorf("put template %s: %w", t.ID, err)
	}
	return nil
}

// Get retrieves a template by ID. Returns nil if not found.
func (s *PostgresStore) Get(ctx context.Context, id string) (*models.PageTemplate, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM page_templates WHERE id = $1`, id,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return decodeDocument(doc)
}

// List returns all templates, most recently updated first.
func (s *PostgresStore) List(ctx context.Context) ([]*models.PageTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM page_templates`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.PageTemplate
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t, err := decodeDocument(doc)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	// The column only has microsecond precision, so order on the decoded
	// documents instead of in SQL.
	SortByRecent(templates)
	return templates, nil
}

// Delete removes a template by ID and reports whether a row was removed.
func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM page_templates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete template %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete template %s: %w", id, err)
	}
	return rows > 0, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func decodeDocument(doc []byte) (*models.PageTemplate, error) {
	var t models.PageTemplate
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("decode template document: %w", err)
	}
	return &t, nil
}
