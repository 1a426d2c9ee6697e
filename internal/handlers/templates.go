// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API for page templates.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pagestore/internal/models"
	"pagestore/internal/templates"
)

const (
	// maxBodySize caps JSON request bodies (create and update).
	maxBodySize = 2 << 20

	// maxImportSize caps imported template files.
	maxImportSize = 2 << 20
)

// Templates groups the template API handlers.
type Templates struct {
	repo *templates.Repository
}

// NewTemplates creates the template handler group.
func NewTemplates(repo *templates.Repository) *Templates {
	return &Templates{repo: repo}
}

// List returns every template, or the search results when any of the q,
// category or tag query parameters is present.
func (h *Templates) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		list []*models.PageTemplate
		err  error
	)
	if q.Has("q") || q.Has("category") || q.Has("tag") {
		filter := models.SearchFilter{
			Category: q.Get("category"),
			Tags:     nonEmpty(q["tag"]),
		}
		list, err = h.repo.Search(r.Context(), q.Get("q"), filter)
	} else {
		list, err = h.repo.List(r.Context())
	}
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.PageTemplate{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get returns a single template by ID.
func (h *Templates) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	if t == nil {
		writeError(w, "Template not found.", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// GetBySlug returns the most recently updated template with the slug.
func (h *Templates) GetBySlug(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	if t == nil {
		writeError(w, "Template not found.", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Create saves a new template from a JSON body.
func (h *Templates) Create(w http.ResponseWriter, r *http.Request) {
	var in models.TemplateInput
	if !decodeBody(w, r, &in) {
		return
	}
	if msg := validateTemplateInput(in); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	t, err := h.repo.Save(r.Context(), in)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Update applies a partial update. The expected version may be given in the
// body or as an If-Match header.
func (h *Templates) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.TemplatePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.ExpectedVersion == "" {
		patch.ExpectedVersion = strings.Trim(r.Header.Get("If-Match"), `"`)
	}
	if msg := validateTemplatePatch(patch); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	t, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Delete removes a template. Deleting a missing template succeeds with
// deleted=false.
func (h *Templates) Delete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.repo.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": removed})
}

// Duplicate saves a copy of a template.
func (h *Templates) Duplicate(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Publish marks a template public.
func (h *Templates) Publish(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Unpublish marks a template private.
func (h *Templates) Unpublish(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.Unpublish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Export downloads a template as a JSON file.
func (h *Templates) Export(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	if t == nil {
		writeError(w, "Template not found.", http.StatusNotFound)
		return
	}

	file, err := h.repo.Export(t)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	// Export file names only contain [a-z0-9_.], so quoting is enough.
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Body)
}

// Import creates a template from an exported file, sent either as the raw
// request body or as the "file" field of a multipart form.
func (h *Templates) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize+1024)

	contents, err := readImport(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, "File too large. Maximum size is 2 MB.", http.StatusRequestEntityTooLarge)
			return
		}
		if errors.Is(err, errNoFile) {
			writeError(w, "No file provided.", http.StatusBadRequest)
			return
		}
		writeError(w, "Failed to read file.", http.StatusBadRequest)
		return
	}
	if len(contents) > maxImportSize {
		writeError(w, "File too large. Maximum size is 2 MB.", http.StatusRequestEntityTooLarge)
		return
	}

	t, err := h.repo.Import(r.Context(), contents)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

var errNoFile = errors.New("no file provided")

func readImport(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxImportSize+1))
}

// decodeBody reads a size-limited JSON body into v. It writes the error
// response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, "Request body too large.", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, "Invalid JSON body.", http.StatusBadRequest)
		return false
	}
	return true
}

// writeRepoError maps repository errors to HTTP statuses.
func writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, templates.ErrTemplateNotFound):
		writeError(w, "Template not found.", http.StatusNotFound)
	case errors.Is(err, templates.ErrInvalidTemplateFormat):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, templates.ErrVersionConflict):
		writeError(w, "Template was modified by someone else. Reload and try again.", http.StatusConflict)
	case errors.Is(err, templates.ErrPersistence):
		slog.Error("template store failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, "Saving failed, please try again.", http.StatusInternalServerError)
	default:
		slog.Error("template request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
