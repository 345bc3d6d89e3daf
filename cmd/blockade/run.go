package main

import (
	"fmt"

	"blockade/pkg/resource"
	"blockade/pkg/scenario"
	stdnet "blockade/std/net"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run scenario files and check their expectations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			runner := scenario.NewRunner(
				scenario.WithLogger(a.log),
				scenario.WithHistory(a.opts.History),
				scenario.WithLoader(resource.NewLoader(stdnet.NewClient(a.opts.Timeout), a.log.Named("resource"))),
			)

			total, failed := 0, 0
			for _, path := range args {
				scenarios, err := scenario.Load(path)
				if err != nil {
					return err
				}
				for _, sc := range scenarios {
					total++
					rep, err := runner.Run(cmd.Context(), sc)
					if err == nil {
						fmt.Fprintf(out, "PASS %s (%d steps)\n", sc.Name, len(rep.Steps))
						continue
					}
					failed++
					fmt.Fprintf(out, "FAIL %s\n", sc.Name)
					for _, e := range multierr.Errors(err) {
						fmt.Fprintf(out, "    %v\n", e)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, total)
			}
			return nil
		},
	}
}
