// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pagestore/internal/models"
	"pagestore/internal/slug"
)

// ExportContentType is the media type of exported template files.
const ExportContentType = "application/json"

// ExportFile is a downloadable template document.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// importFile lists the fields read from an imported document. Identity,
// slug, version and timestamps in the file are ignored.
type importFile struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
	Tags        []string        `json:"tags"`
	Category    string          `json:"category"`
	IsPublic    bool            `json:"isPublic"`
	Author      string          `json:"author"`
}

// Export renders t as an indented JSON document named after the template.
func (r *Repository) Export(t *models.PageTemplate) (*ExportFile, error) {
	if t == nil {
		return nil, fmt.Errorf("export: %w", ErrTemplateNotFound)
	}
	body, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", t.ID, err)
	}
	return &ExportFile{
		Filename:    slug.Filename(t.Name),
		ContentType: ExportContentType,
		Body:        body,
	}, nil
}

// Import creates a new template from an exported document. The document
// must be a JSON object with a non-empty string name and non-null data.
func (r *Repository) Import(ctx context.Context, contents []byte) (*models.PageTemplate, error) {
	in, err := parseImport(contents)
	if err != nil {
		return nil, err
	}
	return r.Save(ctx, in)
}

func parseImport(contents []byte) (models.TemplateInput, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(contents, &fields); err != nil || fields == nil {
		return models.TemplateInput{}, fmt.Errorf("%w: not a JSON object", ErrInvalidTemplateFormat)
	}

	var f importFile
	if err := json.Unmarshal(contents, &f); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return models.TemplateInput{}, fmt.Errorf("%w: field %q has the wrong type", ErrInvalidTemplateFormat, typeErr.Field)
		}
		return models.TemplateInput{}, fmt.Errorf("%w: %v", ErrInvalidTemplateFormat, err)
	}
	if f.Name == "" {
		return models.TemplateInput{}, fmt.Errorf("%w: missing name", ErrInvalidTemplateFormat)
	}
	if len(f.Data) == 0 || string(f.Data) == "null" {
		return models.TemplateInput{}, fmt.Errorf("%w: missing data", ErrInvalidTemplateFormat)
	}

	return models.TemplateInput{
		Name:        f.Name,
		Description: f.Description,
		Data:        f.Data,
		Tags:        f.Tags,
		Category:    f.Category,
		IsPublic:    f.IsPublic,
		Author:      f.Author,
	}, nil
}
