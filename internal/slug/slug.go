// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL slugs and export file names from template names.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, whitespace or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespaceRun matches spaces, tabs and newlines.
	whitespaceRun = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// nonFilenameChar matches a single character not allowed in export names.
	nonFilenameChar = regexp.MustCompile(`[^a-z0-9]`)
)

// fallbackFilename is used when a name has no usable characters.
const fallbackFilename = "template"

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespaceRun.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Filename returns the download name for an exported template: the
// lower-cased name with every non-alphanumeric character replaced by an
// underscore, plus a ".json" extension.
// Example: "Summer Sale!" → "summer_sale_.json"
func Filename(name string) string {
	base := nonFilenameChar.ReplaceAllString(strings.ToLower(name), "_")
	if strings.Trim(base, "_") == "" {
		base = fallbackFilename
	}
	return base + ".json"
}
