package main

import (
	"fmt"

	"blockade/pkg/snapshot"

	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var f stackFlags
	var output string
	cmd := &cobra.Command{
		Use:   "render <file|url>",
		Short: "Render the composed tree as a PNG box map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, stack, err := a.page(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			if err := snapshot.PNG(doc, output, snapshot.WithStack(stack), snapshot.WithWidth(a.opts.Width)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s to %s\n", args[0], output)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "blockade.png", "Output PNG file")
	return cmd
}
