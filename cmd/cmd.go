// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("TRAXYT_CONFIG"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "Enable debug logging",
			Sources: cli.EnvVars("TRAXYT_DEBUG"),
		},
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (text, json, csv, markdown)",
		Value:   "text",
	}
}

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

// setupCommand initializes the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage: "Write a config template if missing, then initialize the database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Revert the most recently applied migration instead",
			},
		},
		Action: r.Setup,
	}
}

// convertCommand runs a conversion in the foreground.
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Search every track and build a playlist link",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path", UsageText: "tracks JSON/CSV file or a directory of audio files"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show the interactive progress screen",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the playlist in a browser when done",
			},
			formatFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the result to a file instead of stdout",
			},
		},
		Action: r.Convert,
	}
}

// searchCommand resolves a single query.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Look up one query and print the match",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "Target duration (m:ss) used to pick the closest video",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "List every admissible candidate",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// resultsCommand recovers persisted results.
func resultsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "results",
		Usage: "Inspect saved conversion results",
		Commands: []*cli.Command{
			{
				Name:   "last",
				Usage:  "Show the most recent result",
				Flags:  []cli.Flag{jsonFlag(), formatFlag()},
				Action: r.ResultsLast,
			},
			{
				Name:  "list",
				Usage: "List saved results, newest first",
				Flags: []cli.Flag{
					jsonFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results to list",
						Value: 10,
					},
				},
				Action: r.ResultsList,
			},
			{
				Name:      "show",
				Usage:     "Show one result and its search log",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag(), formatFlag()},
				Action:    r.ResultsShow,
			},
			{
				Name:  "export",
				Usage: "Write every saved result to a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "File format (text, json, csv, markdown)",
						Value: "json",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory (default: traxyt_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Export only the newest n results (0 for all)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 4,
					},
				},
				Action: r.ResultsExport,
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved result",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.ResultsDelete,
			},
		},
	}
}

// serveCommand starts the HTTP API and event stream.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the conversion API and websocket events",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Usage:   "Listen host (defaults to server.host)",
				Sources: cli.EnvVars("TRAXYT_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (defaults to server.port)",
				Sources: cli.EnvVars("TRAXYT_PORT"),
			},
		},
		Action: r.Serve,
	}
}

// durationCommand exposes the m:ss codec.
func durationCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "duration",
		Usage: "Convert between m:ss text and seconds",
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Print the seconds in a m:ss or h:mm:ss value",
				Arguments: []cli.Argument{&cli.StringArg{Name: "value"}},
				Action:    r.DurationParse,
			},
			{
				Name:      "format",
				Usage:     "Print seconds as m:ss",
				Arguments: []cli.Argument{&cli.StringArg{Name: "value"}},
				Action:    r.DurationFormat,
			},
		},
	}
}
