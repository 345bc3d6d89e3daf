package scenario

import (
	"context"
	"fmt"
	"path/filepath"

	"blockade/pkg/blocking"
	"blockade/pkg/html"
	"blockade/pkg/js"
	"blockade/pkg/resource"
	stdnet "blockade/std/net"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Runner executes scenarios.
type Runner struct {
	log     *zap.Logger
	loader  *resource.Loader
	history int
}

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithLoader sets the loader used for scenarios naming a page file.
func WithLoader(l *resource.Loader) Option {
	return func(r *Runner) { r.loader = l }
}

// WithHistory records the last n stack transitions in each Report.
func WithHistory(n int) Option {
	return func(r *Runner) { r.history = n }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{log: zap.NewNop(), history: 16}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader == nil {
		r.loader = resource.NewLoader(nil, r.log.Named("resource"))
	}
	return r
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int
	Action   string
	Failures []error
}

// Report summarises a scenario run.
type Report struct {
	Name        string
	Steps       []StepResult
	Transitions []blocking.Transition[*html.Node]
}

// Failed reports whether any expectation failed.
func (r *Report) Failed() bool {
	for _, s := range r.Steps {
		if len(s.Failures) > 0 {
			return true
		}
	}
	return false
}

// Err combines every expectation failure, or returns nil.
func (r *Report) Err() error {
	var err error
	for _, s := range r.Steps {
		for _, f := range s.Failures {
			err = multierr.Append(err, fmt.Errorf("%s: step %d (%s): %w", r.Name, s.Index+1, s.Action, f))
		}
	}
	return err
}

// Run loads the page, executes its scripts and applies each step. A step
// that cannot be performed stops the run with an error; failed expectations
// are collected in the Report and returned combined.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	rep := &Report{Name: sc.Name}
	doc, err := r.document(ctx, sc)
	if err != nil {
		return rep, err
	}

	log := r.log.With(zap.String("scenario", sc.Name))
	stack := blocking.New[*html.Node](html.ComposedTree{}, doc.Anchor(),
		blocking.WithLogger[*html.Node](log.Named("blocking")),
		blocking.WithHistory[*html.Node](r.history),
		blocking.WithDescriber(func(n *html.Node) string { return n.String() }),
	)
	engine := js.New(js.WithLogger(log.Named("js")), js.WithBlockingStack(stack))
	if err := engine.Execute(doc); err != nil {
		return rep, fmt.Errorf("%s: %w", sc.Name, err)
	}

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res := StepResult{Index: i, Action: step.Action()}
		if err := apply(engine, doc, stack, i, step); err != nil {
			return rep, fmt.Errorf("%s: step %d (%s): %w", sc.Name, i+1, res.Action, err)
		}
		if step.Expect != nil {
			res.Failures = check(doc, stack, step.Expect)
		}
		log.Debug("step", zap.Int("index", i+1), zap.String("action", res.Action), zap.Int("failures", len(res.Failures)))
		rep.Steps = append(rep.Steps, res)
	}
	rep.Transitions = stack.History()
	return rep, rep.Err()
}

func (r *Runner) document(ctx context.Context, sc *Scenario) (*html.Document, error) {
	if sc.HTML != "" {
		doc, err := html.Parse(sc.HTML)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sc.Name, err)
		}
		return doc, nil
	}
	path := sc.File
	if !stdnet.IsNetworkURL(path) && !filepath.IsAbs(path) {
		path = filepath.Join(sc.dir, path)
	}
	return r.loader.Load(ctx, path)
}

func apply(engine *js.Engine, doc *html.Document, stack *blocking.Stack[*html.Node], i int, step Step) error {
	switch {
	case step.Push != "":
		n, err := doc.Find(step.Push)
		if err != nil {
			return err
		}
		stack.Push(n)
	case step.Remove != "":
		n, err := doc.Find(step.Remove)
		if err != nil {
			return err
		}
		stack.Remove(n)
	case step.Pop:
		stack.Pop()
	case step.Destroy:
		stack.Destroy()
	case step.Script != "":
		if _, err := engine.RunScript(fmt.Sprintf("step-%d.js", i+1), step.Script); err != nil {
			return err
		}
	}
	return nil
}
