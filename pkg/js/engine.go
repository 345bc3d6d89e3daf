package js

import (
	"errors"
	"fmt"

	"blockade/pkg/blocking"
	"blockade/pkg/html"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// ErrNotAttached is returned by RunScript before a document was attached.
var ErrNotAttached = errors.New("js: no document attached")

// Engine executes JavaScript against an HTML document's DOM.
type Engine struct {
	vm    *goja.Runtime
	log   *zap.Logger
	stack *blocking.Stack[*html.Node]
	// shared is set when the stack came from WithBlockingStack.
	shared bool
	doc    *html.Document
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes console output and blocking diagnostics to log.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithBlockingStack binds document.$blockingElements to an existing stack
// instead of one created for the attached document.
func WithBlockingStack(s *blocking.Stack[*html.Node]) Option {
	return func(e *Engine) {
		e.stack, e.shared = s, s != nil
	}
}

// New creates a new JS engine with a fresh goja runtime.
func New(opts ...Option) *Engine {
	e := &Engine{vm: goja.New(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	c := &consoleAPI{log: e.log.Named("console")}
	c.register(e.vm)
	return e
}

// Attach registers the global document for doc without running its scripts.
// Unless a stack was supplied, a new one anchored at the document body is
// created for every document attached.
func (e *Engine) Attach(doc *html.Document) {
	if !e.shared && (e.stack == nil || e.doc != doc) {
		e.stack = blocking.New[*html.Node](html.ComposedTree{}, doc.Anchor(),
			blocking.WithLogger[*html.Node](e.log.Named("blocking")),
			blocking.WithDescriber(func(n *html.Node) string { return n.String() }),
		)
	}
	e.doc = doc
	registerDocument(e.vm, doc, e.stack)
}

// Execute attaches doc and runs its scripts in document order. The first
// failing script stops execution.
func (e *Engine) Execute(doc *html.Document) error {
	e.Attach(doc)
	for i, script := range doc.Scripts {
		if _, err := e.vm.RunString(script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	return nil
}

// RunScript evaluates src against the attached document.
func (e *Engine) RunScript(name, src string) (goja.Value, error) {
	if e.doc == nil {
		return nil, ErrNotAttached
	}
	v, err := e.vm.RunScript(name, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// Blocking returns the stack behind document.$blockingElements, or nil
// before a document was attached.
func (e *Engine) Blocking() *blocking.Stack[*html.Node] {
	return e.stack
}
