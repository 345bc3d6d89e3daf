package main

import (
	"context"
	"fmt"
	"io"

	"blockade/pkg/blocking"
	"blockade/pkg/config"
	"blockade/pkg/html"
	"blockade/pkg/js"
	"blockade/pkg/logging"
	"blockade/pkg/resource"
	stdnet "blockade/std/net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once flags are resolved.
type app struct {
	opts       config.Options
	configPath string
	log        *zap.Logger
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{opts: config.Default(), log: zap.NewNop(), stderr: stderr}

	root := &cobra.Command{
		Use:           "blockade",
		Short:         "Inspect the blocking-elements stack of a page",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := config.NewViper(a.configPath)
			if err := config.Apply(v, a.configPath != "", cmd.Flags()); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			log, err := logging.NewWriter(a.opts.LogLevel, a.stderr)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	fs := root.PersistentFlags()
	a.opts.BindFlags(fs)
	fs.StringVar(&a.configPath, "config", "", "Config file (default: config.yaml in $XDG_CONFIG_HOME/blockade or ~/.blockade)")

	root.AddCommand(newInspectCmd(a), newRunCmd(a), newRenderCmd(a))
	return root
}

// stackFlags are the stack operations applied to a page after its scripts.
type stackFlags struct {
	push   []string
	remove []string
	pop    int
}

func (f *stackFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.push, "push", nil, "Push the element matching `selector` (repeatable, in order)")
	cmd.Flags().StringArrayVar(&f.remove, "remove", nil, "Remove the element matching `selector` after pushing")
	cmd.Flags().IntVar(&f.pop, "pop", 0, "Pop this many elements after pushing and removing")
}

// page loads source, runs its scripts and applies the stack flags.
func (a *app) page(ctx context.Context, source string, f stackFlags) (*html.Document, *blocking.Stack[*html.Node], error) {
	loader := resource.NewLoader(stdnet.NewClient(a.opts.Timeout), a.log.Named("resource"))
	doc, err := loader.Load(ctx, source)
	if err != nil {
		return nil, nil, err
	}

	stack := blocking.New[*html.Node](html.ComposedTree{}, doc.Anchor(),
		blocking.WithLogger[*html.Node](a.log.Named("blocking")),
		blocking.WithHistory[*html.Node](a.opts.History),
		blocking.WithDescriber(func(n *html.Node) string { return n.String() }),
	)
	engine := js.New(js.WithLogger(a.log.Named("js")), js.WithBlockingStack(stack))
	if err := engine.Execute(doc); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", source, err)
	}

	for _, sel := range f.push {
		n, err := doc.Find(sel)
		if err != nil {
			return nil, nil, err
		}
		stack.Push(n)
	}
	for _, sel := range f.remove {
		n, err := doc.Find(sel)
		if err != nil {
			return nil, nil, err
		}
		if !stack.Remove(n) {
			a.log.Warn("element is not on the stack", zap.String("selector", sel))
		}
	}
	for i := 0; i < f.pop; i++ {
		if _, ok := stack.Pop(); !ok {
			break
		}
	}
	return doc, stack, nil
}
