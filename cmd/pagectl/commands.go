// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"pagestore/internal/backend"
	"pagestore/internal/cache"
	"pagestore/internal/config"
	"pagestore/internal/ident"
	"pagestore/internal/logging"
	"pagestore/internal/models"
	"pagestore/internal/templates"
)

func setupLogger(c *cli.Context) error {
	logger, err := logging.New(c.String("log-level"), "text", c.App.ErrWriter)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// openRepository loads the environment configuration, applies the global
// flag overrides and opens the selected store. The returned func releases
// the store and any cache connection.
func openRepository(c *cli.Context) (*templates.Repository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if b := c.String("backend"); b != "" {
		cfg.StorageBackend = b
	}
	if p := c.String("local-path"); p != "" {
		cfg.LocalStorePath = p
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	backendCfg, err := backend.FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	s, err := backend.Open(backendCfg)
	if err != nil {
		return nil, nil, err
	}

	newID, err := ident.ForStrategy(cfg.IDStrategy)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	opts := []templates.Option{templates.WithIDGenerator(newID)}
	closers := []func(){func() { s.Close() }}

	// Writes from the CLI must evict entries the server may be serving.
	if cfg.CacheEnabled {
		client, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
		if err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("failed to connect to valkey: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		opts = append(opts, templates.WithCache(cache.NewTemplateCache(client, cfg.CacheTTL)))
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return templates.New(s, opts...), closeAll, nil
}

// idArg returns the single positional ID argument.
func idArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one template id", c.Command.Name)
	}
	return c.Args().First(), nil
}

func listCommand(c *cli.Context) error {
	repo, closeRepo, err := openRepository(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	list, err := repo.List(c.Context)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}
	return printTable(c, list)
}

func searchCommand(c *cli.Context) error {
	repo, closeRepo, err := openRepository(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	filter := models.SearchFilter{
		Category: c.String("category"),
		Tags:     c.StringSlice("tag"),
	}
	list, err := repo.Search(c.Context, c.Args().First(), filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printTable(c, list)
}

func showCommand(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	repo, closeRepo, err := openRepository(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	t, err := repo.Get(c.Context, id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%s: %w", id, templates.ErrTemplateNotFound)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

func exportCommand(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	repo, closeRepo, err := openRepository(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	t, err := repo.Get(c.Context, id)
	if err != nil {
		return err
	}
	file, err := repo.Export(t)
	if err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}

	dir := c.String("dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, file.Filename)
	if err := os.WriteFile(path, file.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintln(c.App.Writer, path)
	return nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("import: expected exactly one file")
	}
	contents, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	repo, closeRepo, err := openRepository(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	t, err := repo.Import(c.Context, contents)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, t.ID)
	return nil
}

func deleteCommand(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	repo, closeRepo, err := openRepository(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	removed, err := repo.Delete(c.Context, id)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(c.App.Writer, "%s not found\n", id)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%s deleted\n", id)
	return nil
}

func duplicateCommand(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	repo, closeRepo, err := openRepository(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	t, err := repo.Duplicate(c.Context, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, t.ID)
	return nil
}

func publishCommand(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	repo, closeRepo, err := openRepository(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	var t *models.PageTemplate
	if c.Bool("undo") {
		t, err = repo.Unpublish(c.Context, id)
	} else {
		t, err = repo.Publish(c.Context, id)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s public=%t version=%s\n", t.ID, t.IsPublic, t.Version)
	return nil
}

func printTable(c *cli.Context, list []*models.PageTemplate) error {
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tVERSION\tPUBLIC\tUPDATED")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
			t.ID, t.Name, t.Category, t.Version, t.IsPublic, t.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
