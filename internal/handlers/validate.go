// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"pagestore/internal/models"
)

// Validation limits for template fields.
const (
	maxTemplateNameLen = 200
	maxDescriptionLen  = 1_000
	maxCategoryLen     = 100
	maxTags            = 50
	maxTagLen          = 50
	maxDataLen         = 1 << 20
)

// validateTemplateInput checks a create request and returns the first error found.
func validateTemplateInput(in models.TemplateInput) string {
	if msg := validateName(in.Name); msg != "" {
		return msg
	}
	if len(in.Data) == 0 || string(in.Data) == "null" {
		return "Template data is required."
	}
	if msg := validateData(in.Data); msg != "" {
		return msg
	}
	return validateFields(in.Description, in.Category, in.Tags)
}

// validateTemplatePatch checks the fields present in an update request.
func validateTemplatePatch(p models.TemplatePatch) string {
	if p.Name != nil {
		if msg := validateName(*p.Name); msg != "" {
			return msg
		}
	}
	if p.HasData() {
		if msg := validateData(p.Data); msg != "" {
			return msg
		}
	}
	var desc, category string
	var tags []string
	if p.Description != nil {
		desc = *p.Description
	}
	if p.Category != nil {
		category = *p.Category
	}
	if p.Tags != nil {
		tags = *p.Tags
	}
	return validateFields(desc, category, tags)
}

func validateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Template name is required."
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLen {
		return "Template name is too long (max 200 characters)."
	}
	return ""
}

func validateData(data json.RawMessage) string {
	if len(data) > maxDataLen {
		return "Template data is too large (max 1 MB)."
	}
	if !json.Valid(data) {
		return "Template data must be valid JSON."
	}
	return ""
}

func validateFields(description, category string, tags []string) string {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 1,000 characters)."
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return "Category is too long (max 100 characters)."
	}
	if len(tags) > maxTags {
		return "Too many tags (max 50)."
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return "Tags must not be empty."
		}
		if utf8.RuneCountInString(tag) > maxTagLen {
			return "Tag is too long (max 50 characters)."
		}
	}
	return ""
}
