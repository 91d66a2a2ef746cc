package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mkmsgf/internal/compiler"
	"github.com/samcharles93/mkmsgf/internal/langid"
	"github.com/samcharles93/mkmsgf/internal/logger"
	"github.com/samcharles93/mkmsgf/internal/version"
	"github.com/samcharles93/mkmsgf/pkg/msgfile"
)

func compileCmd(env *runEnv) *cli.Command {
	var s compileSettings
	var dbcs string

	return &cli.Command{
		Name:      "compile",
		Usage:     "Compile a message definition file",
		ArgsUsage: "<infile> [outfile]",
		Before:    env.setupLogging,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "codepage",
				Aliases:     []string{"p"},
				Usage:       "codepage to record in the catalog (repeatable, up to 16)",
				Destination: &s.codepages,
			},
			&cli.StringFlag{
				Name:        "lang",
				Aliases:     []string{"l"},
				Usage:       "language family and sub-id, e.g. 1,2",
				Destination: &s.language,
			},
			&cli.BoolFlag{
				Name:        "ext",
				Aliases:     []string{"e"},
				Usage:       "append the extension block to the catalog",
				Destination: &s.extension,
			},
			&cli.BoolFlag{
				Name:    "asm",
				Aliases: []string{"a"},
				Usage:   "write assembler source, labels from .INC files",
			},
			&cli.BoolFlag{
				Name:    "header",
				Aliases: []string{"c"},
				Usage:   "write assembler source, labels from .H files",
			},
			&cli.StringFlag{
				Name:        "include",
				Aliases:     []string{"i"},
				Usage:       "semicolon separated symbol search path",
				Destination: &s.include,
			},
			&cli.StringFlag{
				Name:        "dbcs",
				Aliases:     []string{"d"},
				Usage:       "DBCS range file (not supported)",
				Destination: &dbcs,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print the catalog layout after compiling",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only report errors",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			out := cmd.Root().Writer
			if !cmd.Bool("quiet") {
				_, _ = fmt.Fprintln(out, version.Banner())
			}

			if cmd.IsSet("dbcs") {
				return cli.Exit("Sorry, DBCS not supported", 1)
			}
			if cmd.NArg() < 1 || cmd.NArg() > 2 {
				return fmt.Errorf("%w (got %d arguments)", compiler.ErrNoInput, cmd.NArg())
			}
			applyCompileConfig(cmd, env.cfg, &s)

			opts, err := s.options(cmd, log)
			if err != nil {
				return err
			}
			opts.Output, _ = resolveOutput(opts.Input, cmd.Args().Get(1), opts.Mode, s.outDir)
			if opts.EnvInclude == "" {
				opts.EnvInclude = os.Getenv(envInclude)
			}

			res, err := compiler.Compile(ctx, opts)
			if err != nil {
				return err
			}
			if cmd.Bool("verbose") && opts.Mode == compiler.ModeCatalog {
				return printCatalogReport(out, res.Output)
			}
			return nil
		},
	}
}

// options converts the settings into compiler options.
func (s *compileSettings) options(cmd *cli.Command, log logger.Logger) (compiler.Options, error) {
	opts := compiler.Options{
		Input:     cmd.Args().First(),
		Mode:      compiler.ModeCatalog,
		Extension: s.extension,
		Include:   s.include,
		Logger:    log,
	}
	switch {
	case cmd.Bool("asm") && cmd.Bool("header"):
		return opts, errors.New("--asm and --header are mutually exclusive")
	case cmd.Bool("asm"):
		opts.Mode = compiler.ModeAsm
	case cmd.Bool("header"):
		opts.Mode = compiler.ModeHeader
	}

	cps, err := compiler.ParseCodepages(s.codepages)
	if err != nil {
		return opts, err
	}
	opts.Codepages = cps

	if strings.TrimSpace(s.language) != "" {
		id, defaulted, err := langid.Parse(s.language)
		if err != nil {
			return opts, err
		}
		if defaulted {
			log.Warn("language sub-id missing, using 1", "family", id.Family)
		}
		opts.Language = &id
	}
	return opts, nil
}

// printCatalogReport prints the layout of a compiled catalog.
func printCatalogReport(w io.Writer, path string) error {
	mf, err := msgfile.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = mf.Close() }()
	writeCatalogReport(w, path, mf)
	return nil
}
