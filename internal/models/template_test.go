// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestPageTemplateJSONFieldNames verifies the export/import field names.
func TestPageTemplateJSONFieldNames(t *testing.T) {
	tmpl := PageTemplate{
		ID:        "template_1",
		Name:      "Landing",
		Slug:      "landing",
		Data:      json.RawMessage(`{"sections":[]}`),
		Tags:      []string{"promo"},
		IsPublic:  true,
		Version:   "1.0.0",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(tmpl)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for _, key := range []string{"id", "name", "slug", "data", "tags", "isPublic", "version", "createdAt", "updatedAt"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing JSON field %q", key)
		}
	}
	// Optional fields are omitted when empty.
	for _, key := range []string{"description", "category", "author"} {
		if _, ok := fields[key]; ok {
			t.Errorf("expected %q to be omitted when empty", key)
		}
	}
	if string(fields["createdAt"]) != `"2026-01-02T03:04:05Z"` {
		t.Errorf("createdAt: got %s, want ISO-8601 UTC", fields["createdAt"])
	}
}

func TestPageTemplateClone(t *testing.T) {
	orig := &PageTemplate{
		ID:   "template_1",
		Data: json.RawMessage(`{"a":1}`),
		Tags: []string{"a", "b"},
	}

	c := orig.Clone()
	c.Tags[0] = "changed"
	c.Data[2] = 'z'

	if orig.Tags[0] != "a" {
		t.Error("clone shares the tags slice with the original")
	}
	if string(orig.Data) != `{"a":1}` {
		t.Error("clone shares the data buffer with the original")
	}

	var nilTmpl *PageTemplate
	if nilTmpl.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestPageTemplateHasTag(t *testing.T) {
	tmpl := &PageTemplate{Tags: []string{"promo", "sale"}}

	tests := []struct {
		tag  string
		want bool
	}{
		{"promo", true},
		{"sale", true},
		{"Promo", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := tmpl.HasTag(tc.tag); got != tc.want {
			t.Errorf("HasTag(%q) = %v, want %v", tc.tag, got, tc.want)
		}
	}
}

func TestTemplatePatchHasData(t *testing.T) {
	tests := []struct {
		name  string
		patch TemplatePatch
		want  bool
	}{
		{name: "absent", patch: TemplatePatch{}, want: false},
		{name: "null", patch: TemplatePatch{Data: json.RawMessage("null")}, want: false},
		{name: "empty object", patch: TemplatePatch{Data: json.RawMessage("{}")}, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.patch.HasData(); got != tc.want {
				t.Errorf("HasData() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTemplatePatchDecodePointers(t *testing.T) {
	var p TemplatePatch
	if err := json.Unmarshal([]byte(`{"tags":["promo","sale"],"isPublic":false}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Name != nil {
		t.Error("name should stay nil when absent")
	}
	if p.Tags == nil || len(*p.Tags) != 2 {
		t.Errorf("tags: got %v, want two tags", p.Tags)
	}
	if p.IsPublic == nil || *p.IsPublic {
		t.Error("isPublic should be present and false")
	}
}
