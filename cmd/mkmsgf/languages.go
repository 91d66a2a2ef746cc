package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mkmsgf/internal/langid"
)

func languagesCmd(env *runEnv) *cli.Command {
	return &cli.Command{
		Name:   "languages",
		Usage:  "List the language family and sub-id table",
		Before: env.setupLogging,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "CODE\tFAMILY\tSUB\tTAG\tLANGUAGE\tCOUNTRY")
			for _, l := range langid.All() {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n", l.Code, l.Family, l.Sub, l.Tag, l.Name, l.Country)
			}
			return tw.Flush()
		},
	}
}
