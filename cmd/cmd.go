// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// entryFlags are the inputs shared by fetch and resolve; positional arguments are entries too.
func entryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "inputs",
			Aliases: []string{"i"},
			Usage:   "Comma-separated entries: song IDs, song URLs or \"title - artist\"",
		},
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"f"},
			Usage:   "File with one entry per line",
		},
	}
}

// resolveFlags tune catalog access and candidate matching.
func resolveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{
			Name:  "sleep",
			Usage: "Minimum seconds between catalog requests",
		},
		&cli.IntFlag{
			Name:  "search-limit",
			Usage: "Number of search candidates to score",
		},
		&cli.BoolFlag{
			Name:  "fuzzy",
			Usage: "Waive the artist mismatch penalty (use --fuzzy=false for strict matching)",
			Value: true,
		},
		&cli.FloatFlag{
			Name:  "threshold",
			Usage: "Minimum score to accept a search candidate",
		},
		&cli.StringFlag{
			Name:  "cookie",
			Usage: "Cookie header sent to the catalog (overrides credentials.cookie)",
		},
	}
}

// fetchCommand runs the batch pipeline
func fetchCommand(r *Runner) *cli.Command {
	flags := append(entryFlags(), resolveFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "outdir",
			Aliases: []string{"o"},
			Usage:   "Directory for .lrc files",
		},
		&cli.IntFlag{
			Name:  "retries",
			Usage: "Additional lyric attempts after the first",
		},
		&cli.FloatFlag{
			Name:  "backoff",
			Usage: "Base retry delay in seconds, multiplied by the attempt number",
		},
		&cli.StringFlag{
			Name:  "translation",
			Usage: "Translated lyric handling: append, none or prefer",
		},
		&cli.StringFlag{
			Name:    "report",
			Aliases: []string{"r"},
			Usage:   "Write a report file (.csv, .json, .md or .txt)",
		},
		&cli.BoolFlag{
			Name:  "history",
			Usage: "Record the run in the history database",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the report as JSON",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Show live progress in a terminal UI",
		},
	)

	return &cli.Command{
		Name:      "fetch",
		Aliases:   []string{"get"},
		Usage:     "Resolve entries and download their lyrics as .lrc files",
		ArgsUsage: "[entry...]",
		Flags:     flags,
		Action:    r.Fetch,
	}
}

// resolveCommand is a dry run of the resolution stage
func resolveCommand(r *Runner) *cli.Command {
	flags := append(entryFlags(), resolveFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
	)

	return &cli.Command{
		Name:      "resolve",
		Usage:     "Show which catalog song each entry resolves to without downloading",
		ArgsUsage: "[entry...]",
		Flags:     flags,
		Action:    r.Resolve,
	}
}

// searchCommand prints scored candidates for one query
func searchCommand(r *Runner) *cli.Command {
	flags := append(resolveFlags(),
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	)

	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalog and show how each candidate scores",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags:  flags,
		Action: r.Search,
	}
}

// setupCommand handles setup operations for configuration, credentials and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml with default values",
				Action: r.SetupConfig,
			},
			{
				Name:  "cookie",
				Usage: "Store the catalog cookie from a browser \"Copy as cURL\" command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.SetupCookie,
			},
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// historyCommand inspects recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded batch runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show the outcomes of one run",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "run",
						UsageText: "run number or ID",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:    "report",
						Aliases: []string{"r"},
						Usage:   "Write the stored run as a report file (.csv, .json, .md or .txt)",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a recorded run",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name:      "run",
						UsageText: "run number or ID",
					},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}
