// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package version handles the "major.minor.patch" strings stored on page
// templates. Only the patch component is ever advanced automatically.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Initial is the version assigned to every newly saved template.
const Initial = "1.0.0"

// ErrInvalidFormat is returned for strings that are not three
// dot-separated non-negative integers.
var ErrInvalidFormat = errors.New("invalid version format")

// Version is a parsed major.minor.patch triple.
type Version struct {
	Major, Minor, Patch uint64
}

// Parse converts s into a Version.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	var nums [3]uint64
	for i, p := range parts {
		// ParseUint accepts a leading "+", which is not a valid component.
		if p == "" || p[0] == '+' {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String formats v as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Bump returns s with its patch component increased by one.
func Bump(s string) (string, error) {
	v, err := Parse(s)
	if err != nil {
		return "", err
	}
	v.Patch++
	return v.String(), nil
}
