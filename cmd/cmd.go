// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/scanarr/internal/formatter"
	"github.com/urfave/cli/v3"
)

// serveCommand runs the web scanner
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the barcode form and progress stream over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides server.host and server.port",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the scanner page in the default browser",
			},
		},
		Action: r.Serve,
	}
}

// scanCommand runs a single import from the terminal
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Import the album with the given UPC/EAN barcode",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "barcode",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw progress frames",
			},
		},
		Action: r.Scan,
	}
}

// checkCommand probes the Lidarr configuration
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify Lidarr root folder and profiles",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Check,
	}
}

// resolveCommand looks up barcode metadata without touching Lidarr
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Look up the MusicBrainz release for a barcode",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "barcode",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Resolve,
	}
}

// historyCommand lists recorded imports
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded imports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show imports with this status (running, succeeded, failed)",
			},
			&cli.StringFlag{
				Name:  "barcode",
				Usage: "Only show imports of this barcode",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of imports to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (table, csv, json)",
				Value:   formatter.FormatTable,
			},
		},
		Action: r.History,
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show one recorded import",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (table, csv, json)",
						Value:   formatter.FormatJSON,
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Remove a recorded import from history",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// setupCommand writes the config file and prepares the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent database migration instead",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand launches the interactive scanner
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Scan barcodes in an interactive terminal UI",
		Action: r.TUI,
	}
}
