// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package templates

import (
	"errors"
	"fmt"

	"pagestore/internal/version"
)

var (
	// ErrTemplateNotFound indicates the target of an update, duplicate or
	// publish does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplateFormat indicates an import payload or template data
	// that cannot be accepted.
	ErrInvalidTemplateFormat = errors.New("invalid template format")

	// ErrVersionConflict indicates an update carried an expected version
	// that no longer matches the stored one.
	ErrVersionConflict = errors.New("template version conflict")

	// ErrPersistence indicates the backing store failed. Every such failure
	// is returned as a *PersistenceError.
	ErrPersistence = errors.New("template persistence failed")

	// ErrInvalidVersionFormat indicates a stored version string is corrupt.
	ErrInvalidVersionFormat = version.ErrInvalidFormat
)

// PersistenceError records which store operation failed. It matches both
// ErrPersistence and the underlying cause with errors.Is.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s templates: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s template %s: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
