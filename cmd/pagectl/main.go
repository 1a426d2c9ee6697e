// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is pagectl, a command-line tool that manages page templates
// directly in the configured store.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pagectl",
		Usage: "Manage saved page templates",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend (local, azurite, cosmos, postgres); overrides STORAGE_BACKEND",
			},
			&cli.StringFlag{
				Name:  "local-path",
				Usage: "Badger directory for the local backend; overrides LOCAL_STORE_PATH",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all templates, most recently updated first",
				Action: listCommand,
			},
			{
				Name:      "search",
				Usage:     "Search templates by text, category and tags",
				ArgsUsage: "[query]",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only templates in this category",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Only templates carrying this tag (repeatable)",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Print a template as JSON",
				ArgsUsage: "<id>",
				Action:    showCommand,
			},
			{
				Name:      "export",
				Usage:     "Write a template to a JSON file named after it",
				ArgsUsage: "<id>",
				Action:    exportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory to write the file into",
						Value:   ".",
					},
				},
			},
			{
				Name:      "import",
				Usage:     "Create a template from an exported JSON file",
				ArgsUsage: "<file>",
				Action:    importCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a template",
				ArgsUsage: "<id>",
				Action:    deleteCommand,
			},
			{
				Name:      "duplicate",
				Usage:     "Copy a template under a new ID",
				ArgsUsage: "<id>",
				Action:    duplicateCommand,
			},
			{
				Name:      "publish",
				Usage:     "Mark a template public",
				ArgsUsage: "<id>",
				Action:    publishCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "undo",
						Usage: "Mark the template private instead",
					},
				},
			},
		},
	}
}
