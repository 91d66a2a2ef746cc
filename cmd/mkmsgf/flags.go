package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mkmsgf/internal/logger"
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, warn, error)",
			Value: "info",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format (pretty, json, text)",
			Value: "pretty",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging (shorthand for --log-level=debug)",
		},
	}
}

// setupLogging is the Before hook of every subcommand. It builds the
// logger from the logging flags, the config file and the compile
// verbosity switches, and stores it in the context.
func (env *runEnv) setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	levelName := cmd.String("log-level")
	if env.cfg.LogLevel != "" && !cmd.IsSet("log-level") {
		levelName = env.cfg.LogLevel
	}
	format := cmd.String("log-format")
	if env.cfg.LogFormat != "" && !cmd.IsSet("log-format") {
		format = env.cfg.LogFormat
	}

	level := logger.ParseLevel(levelName)
	switch {
	case cmd.Bool("debug"), cmd.Bool("verbose"):
		level = slog.LevelDebug
	case cmd.Bool("quiet"):
		level = slog.LevelError
	}
	return logger.WithContext(ctx, logger.ForFormat(format, env.stderr, level)), nil
}
