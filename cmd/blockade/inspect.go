package main

import (
	"fmt"

	"blockade/pkg/snapshot"

	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var f stackFlags
	var history bool
	cmd := &cobra.Command{
		Use:   "inspect <file|url>",
		Short: "Print the composed tree with inert markers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, stack, err := a.page(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := snapshot.Text(doc, out, snapshot.WithStack(stack)); err != nil {
				return err
			}
			if !history {
				return nil
			}
			fmt.Fprintln(out)
			for _, t := range stack.History() {
				fmt.Fprintf(out, "%s -> %s: released %d, blocked %d (shared %d, pairs %d, sweeps %d)\n",
					t.OldTop, t.NewTop, t.Released, t.Blocked, t.Shared, t.Pairs, t.Sweeps)
			}
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().BoolVar(&history, "transitions", false, "Also print the recorded stack transitions")
	return cmd
}
