package templates

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagestore/internal/models"
)

func TestExport(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, models.TemplateInput{
		Name: "Summer Sale!",
		Data: json.RawMessage(`{"rows":[]}`),
		Tags: []string{"promo"},
	})
	require.NoError(t, err)

	file, err := repo.Export(saved)
	require.NoError(t, err)
	assert.Equal(t, "summer_sale_.json", file.Filename)
	assert.Equal(t, "application/json", file.ContentType)
	assert.Contains(t, string(file.Body), "\n  \"id\": ")

	var decoded models.PageTemplate
	require.NoError(t, json.Unmarshal(file.Body, &decoded))
	assert.Equal(t, saved.ID, decoded.ID)
	assert.Equal(t, saved.Version, decoded.Version)
	assert.JSONEq(t, `{"rows":[]}`, string(decoded.Data))
}

func TestExport_Nil(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Export(nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestImport_Valid(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	imported, err := repo.Import(ctx, []byte(`{"name":"T","data":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "T", imported.Name)
	assert.Equal(t, "1.0.0", imported.Version)
	assert.Equal(t, "{}", string(imported.Data))

	got, err := repo.Get(ctx, imported.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestImport_IgnoresIdentityFromFile(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	file := `{
		"id": "template_1_external",
		"name": "Imported",
		"slug": "something-else",
		"description": "from disk",
		"data": {"blocks": [1]},
		"tags": ["x", "y"],
		"category": "landing",
		"isPublic": true,
		"author": "pat",
		"version": "9.9.9",
		"createdAt": "2020-01-01T00:00:00Z",
		"updatedAt": "2020-01-02T00:00:00Z"
	}`
	imported, err := repo.Import(ctx, []byte(file))
	require.NoError(t, err)

	assert.NotEqual(t, "template_1_external", imported.ID)
	assert.Equal(t, "imported", imported.Slug)
	assert.Equal(t, "1.0.0", imported.Version)
	assert.True(t, imported.CreatedAt.Equal(clock.Now()))
	assert.Equal(t, "from disk", imported.Description)
	assert.Equal(t, []string{"x", "y"}, imported.Tags)
	assert.Equal(t, "landing", imported.Category)
	assert.True(t, imported.IsPublic)
	assert.Equal(t, "pat", imported.Author)
}

func TestImport_ExportRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	orig, err := repo.Save(ctx, models.TemplateInput{
		Name: "Round Trip",
		Data: json.RawMessage(`{"nested":{"deep":[true,null,1.5]}}`),
		Tags: []string{"t"},
	})
	require.NoError(t, err)

	file, err := repo.Export(orig)
	require.NoError(t, err)
	copied, err := repo.Import(ctx, file.Body)
	require.NoError(t, err)

	assert.NotEqual(t, orig.ID, copied.ID)
	assert.Equal(t, orig.Name, copied.Name)
	assert.JSONEq(t, string(orig.Data), string(copied.Data))
	assert.Equal(t, orig.Tags, copied.Tags)
}

func TestImport_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{name: "missing name and data", contents: `{"description":"x"}`},
		{name: "missing data", contents: `{"name":"T"}`},
		{name: "null data", contents: `{"name":"T","data":null}`},
		{name: "missing name", contents: `{"data":{}}`},
		{name: "empty name", contents: `{"name":"","data":{}}`},
		{name: "name not a string", contents: `{"name":42,"data":{}}`},
		{name: "tags not strings", contents: `{"name":"T","data":{},"tags":[1,2]}`},
		{name: "array", contents: `[{"name":"T","data":{}}]`},
		{name: "null", contents: `null`},
		{name: "not json", contents: `name: T`},
		{name: "empty", contents: ``},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, _ := newTestRepo(t)
			ctx := context.Background()

			_, err := repo.Import(ctx, []byte(tc.contents))
			assert.ErrorIs(t, err, ErrInvalidTemplateFormat)

			all, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all, "rejected import must not store anything")
		})
	}
}
