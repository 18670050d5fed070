package main

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/llxisdsh/cohash/internal/benchcfg"
)

// Version is set via ldflags.
var Version = "dev"

const (
	metaConfig = "config"
	metaLogger = "logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "cohash",
		Usage:   "exercise concurrent open-addressing containers",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"COHASH_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override log.level (trace, debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			scenarioCommand(),
			benchCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := benchcfg.Load(c.String("config"))
			if err != nil {
				return err
			}
			if lvl := c.String("log-level"); lvl != "" {
				cfg.Log.Level = lvl
			}
			c.App.Metadata[metaConfig] = cfg
			c.App.Metadata[metaLogger] = hclog.New(&hclog.LoggerOptions{
				Name:       "cohash",
				Level:      hclog.LevelFromString(cfg.Log.Level),
				Output:     os.Stderr,
				JSONFormat: cfg.Log.JSON,
			})
			return nil
		},
	}
}

func configFrom(c *cli.Context) benchcfg.Config {
	if cfg, ok := c.App.Metadata[metaConfig].(benchcfg.Config); ok {
		return cfg
	}
	return benchcfg.Default()
}

func loggerFrom(c *cli.Context) hclog.Logger {
	if l, ok := c.App.Metadata[metaLogger].(hclog.Logger); ok {
		return l
	}
	return hclog.NewNullLogger()
}
