package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mkmsgf/internal/version"
)

const shortUsage = "usage: mkmsgf [compile] infile[.ext] [outfile[.ext]] [-V] [-D dbcs] [-P codepage] [-L family,sub]"

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if len(args) > 1 && strings.HasPrefix(args[1], "@") {
		return runBatch(ctx, args[0], args[1][1:], stdout, stderr)
	}
	if err := runOnce(ctx, args, stdout, stderr); err != nil {
		_, _ = fmt.Fprintln(stderr, shortUsage)
		_, _ = fmt.Fprintf(stderr, "mkmsgf: %v\n", err)
		return 1
	}
	return 0
}

func runOnce(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return newApp(stdout, stderr).Run(ctx, rewriteLegacyArgs(args))
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	env := &runEnv{
		cfg:    LoadConfig(),
		stdout: stdout,
		stderr: stderr,
	}
	return &cli.Command{
		Name:      "mkmsgf",
		Usage:     "Compile OS/2 message definition files into message catalogs",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     loggingFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, _ = fmt.Fprintln(cmd.Writer, version.Banner())
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			compileCmd(env),
			inspectCmd(env),
			languagesCmd(env),
			serveCmd(env),
			versionCmd(),
		},
		// Errors are reported once by run; nothing below cmd/ exits.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// runEnv is shared by the commands of one invocation.
type runEnv struct {
	cfg    Config
	stdout io.Writer
	stderr io.Writer
}
