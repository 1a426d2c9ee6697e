// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ident generates opaque template identifiers. Identifiers are
// effectively unique within a process; no coordination with other processes
// or with the backing store takes place.
package ident

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Prefix starts every timestamp-based identifier.
	Prefix = "template_"

	// suffixLen is the number of random base-36 characters appended.
	suffixLen = 8

	base36 = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Strategy names accepted by ForStrategy.
const (
	StrategyTimestamp = "timestamp"
	StrategyUUID      = "uuid"
)

// Generator returns a new identifier on every call.
type Generator func() string

// Timestamp returns a generator producing "template_<unix ms>_<random>".
func Timestamp() Generator {
	return func() string {
		return newTimestampID(time.Now())
	}
}

// UUID returns a generator producing random (version 4) UUID strings.
func UUID() Generator {
	return uuid.NewString
}

// ForStrategy maps a configured strategy name to a generator.
// An empty name selects the timestamp strategy.
func ForStrategy(name string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyTimestamp:
		return Timestamp(), nil
	case StrategyUUID:
		return UUID(), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q (want %q or %q)", name, StrategyTimestamp, StrategyUUID)
	}
}

func newTimestampID(now time.Time) string {
	var b strings.Builder
	b.Grow(len(Prefix) + 14 + 1 + suffixLen)
	b.WriteString(Prefix)
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('_')
	for range suffixLen {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}
