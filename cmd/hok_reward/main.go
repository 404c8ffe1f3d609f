package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/hokarena/reward/internal/config"
	"github.com/hokarena/reward/internal/episode"
	"github.com/hokarena/reward/internal/logging"
	intOtel "github.com/hokarena/reward/internal/otel"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "hok_reward"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager = logging.NewSlogManager()

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger = slog.Default()

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// EpisodeContext holds the episode being scored, stamped on every log record
	EpisodeContext *episode.Context = episode.NewContext()

	SessionStartTime time.Time = time.Now()
)

func main() {
	app := makeapp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func makeapp() *cli.App {
	app := cli.NewApp()
	app.Name = AppName
	app.Usage = "Per-frame reward decomposition for 1v1 replays"
	app.Version = fmt.Sprintf("%s (%s)", CurrentVersion, BuildDate)

	configFlag := cli.StringFlag{Name: "config", Value: ".", Usage: "Directory holding " + config.FileName}

	app.Commands = []cli.Command{
		{
			Name:      "replay",
			Aliases:   []string{"r"},
			Usage:     "Score replay streams and store the rewards",
			ArgsUsage: "FILE...",
			Flags:     []cli.Flag{configFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() == 0 {
					return cli.NewExitError("no replay files given", 2)
				}
				return replayAction(c.String("config"), c.Args())
			},
		},
		{
			Name:  "lineups",
			Usage: "Print the next episode plans of the lineup schedule",
			Flags: []cli.Flag{
				configFlag,
				cli.IntFlag{Name: "n", Value: 10, Usage: "Number of episodes"},
			},
			Action: func(c *cli.Context) error {
				return lineupsAction(c.String("config"), c.Int("n"), os.Stdout)
			},
		},
		{
			Name:      "export",
			Usage:     "Write stored episodes as gzip JSON",
			ArgsUsage: "ID...",
			Flags: []cli.Flag{
				configFlag,
				cli.StringFlag{Name: "sqlite", Usage: "Read from a sqlite file, or every .db file of a directory, instead of Postgres"},
				cli.StringFlag{Name: "out", Value: ".", Usage: "Output directory"},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() == 0 {
					return cli.NewExitError("no episode ids given", 2)
				}
				return exportAction(c.String("config"), c.String("sqlite"), c.String("out"), c.Args())
			},
		},
	}

	return app
}
