// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package backend selects and opens the template store. The choice is made
// once at startup from a tagged configuration value; nothing switches on the
// backend name after Open returns.
package backend

import (
	"errors"
	"fmt"
	"log/slog"

	"pagestore/internal/config"
	"pagestore/internal/database"
	"pagestore/internal/storage"
	"pagestore/internal/store"
	"pagestore/internal/store/local"
)

// ErrNotImplemented is returned for backends that are accepted by
// configuration but have no store implementation.
var ErrNotImplemented = errors.New("storage backend not implemented")

// InMemoryPath as LOCAL_STORE_PATH selects a local store that is discarded
// on exit.
const InMemoryPath = ":memory:"

// Config describes one backend. Exactly one of the types below is used.
type Config interface {
	// Name returns the STORAGE_BACKEND value this config corresponds to.
	Name() string
}

// LocalConfig opens the embedded Badger store.
type LocalConfig struct {
	Path     string
	InMemory bool
}

// BlobConfig opens the S3-compatible blob store.
type BlobConfig struct {
	storage.Config
}

// PostgresConfig opens the relational store and applies migrations.
type PostgresConfig struct {
	DSN string
}

// CosmosConfig names the document-database backend, which has no
// implementation.
type CosmosConfig struct{}

func (LocalConfig) Name() string    { return config.BackendLocal }
func (BlobConfig) Name() string     { return config.BackendAzurite }
func (PostgresConfig) Name() string { return config.BackendPostgres }
func (CosmosConfig) Name() string   { return config.BackendCosmos }

// FromConfig builds the backend config matching cfg.StorageBackend.
func FromConfig(cfg *config.Config) (Config, error) {
	switch cfg.StorageBackend {
	case config.BackendLocal:
		if cfg.LocalStorePath == InMemoryPath {
			return LocalConfig{InMemory: true}, nil
		}
		return LocalConfig{Path: cfg.LocalStorePath}, nil
	case config.BackendAzurite:
		return BlobConfig{Config: storage.Config{
			Endpoint:   cfg.S3Endpoint,
			Region:     cfg.S3Region,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Bucket:     cfg.S3Bucket,
			Prefix:     cfg.S3Prefix,
			MaxRetries: cfg.S3MaxRetries,
			RetryDelay: cfg.S3RetryDelay,
			Workers:    cfg.S3Workers,
		}}, nil
	case config.BackendPostgres:
		return PostgresConfig{DSN: cfg.DSN()}, nil
	case config.BackendCosmos:
		return CosmosConfig{}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Open constructs the store described by cfg.
func Open(cfg Config) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch c := cfg.(type) {
	case LocalConfig:
		if c.InMemory {
			s, err = local.OpenInMemory()
		} else {
			s, err = local.Open(c.Path)
		}
	case BlobConfig:
		s, err = storage.New(c.Config)
	case PostgresConfig:
		s, err = openPostgres(c.DSN)
	case CosmosConfig:
		return nil, fmt.Errorf("%s: %w", c.Name(), ErrNotImplemented)
	case nil:
		return nil, errors.New("no storage backend configured")
	default:
		return nil, fmt.Errorf("unsupported backend config %T", cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Name(), err)
	}

	slog.Info("template store opened", "backend", cfg.Name())
	return s, nil
}

func openPostgres(dsn string) (store.Store, error) {
	db, err := database.Connect(dsn)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return store.NewPostgresStore(db), nil
}
