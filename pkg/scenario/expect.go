package scenario

import (
	"fmt"

	"blockade/pkg/blocking"
	"blockade/pkg/html"
)

// check returns one error per unmet expectation.
func check(doc *html.Document, stack *blocking.Stack[*html.Node], want *Expect) []error {
	var failures []error
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Errorf(format, args...))
	}

	top, ok := stack.Top()
	switch {
	case want.Top == "":
	case want.Top == "none":
		if ok {
			fail("top: want empty stack, got %s", top)
		}
	default:
		n, err := doc.Root.QuerySelector(want.Top, true)
		switch {
		case err != nil:
			fail("top: %v", err)
		case n == nil:
			fail("top: no element matches %q", want.Top)
		case n != top:
			fail("top: want %s, got %s", n, top)
		}
	}

	if want.Depth != nil && stack.Len() != *want.Depth {
		fail("depth: want %d, got %d", *want.Depth, stack.Len())
	}

	for _, sel := range want.Inert {
		each(doc, sel, fail, func(n *html.Node) {
			if !n.EffectivelyInert() {
				fail("inert: %s (%q) is interactive", n, sel)
			}
		})
	}
	for _, sel := range want.Interactive {
		each(doc, sel, fail, func(n *html.Node) {
			if n.EffectivelyInert() {
				fail("interactive: %s (%q) is inert", n, sel)
			}
		})
	}

	if want.NoInert {
		doc.Root.Walk(func(n *html.Node) {
			if n.Inert() {
				fail("noInert: %s is inert", n)
			}
		})
	}
	return failures
}

// each calls fn for every element matching sel. A selector that matches
// nothing is a failure of its own.
func each(doc *html.Document, sel string, fail func(string, ...any), fn func(*html.Node)) {
	nodes, err := doc.Root.QuerySelectorAll(sel, true)
	if err != nil {
		fail("%v", err)
		return
	}
	if len(nodes) == 0 {
		fail("no element matches %q", sel)
		return
	}
	for _, n := range nodes {
		fn(n)
	}
}
