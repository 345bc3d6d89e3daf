// Package snapshot renders the composed tree of a document with its inert
// state, as indented text or as a PNG box map.
package snapshot

import (
	"io"
	"strings"

	"blockade/pkg/blocking"
	"blockade/pkg/html"
)

type options struct {
	stack *blocking.Stack[*html.Node]
	width int
}

// Option configures a snapshot.
type Option func(*options)

// WithStack marks the top and the other elements of stack.
func WithStack(s *blocking.Stack[*html.Node]) Option {
	return func(o *options) { o.stack = s }
}

// WithWidth sets the PNG width in pixels.
func WithWidth(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.width = px
		}
	}
}

func newOptions(opts []Option) options {
	o := options{width: 800}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) marker(n *html.Node) string {
	var marks []string
	if n.Inert() {
		marks = append(marks, "inert")
	}
	if o.stack != nil {
		if top, ok := o.stack.Top(); ok && top == n {
			marks = append(marks, "[top]")
		} else if o.stack.Has(n) {
			marks = append(marks, "[blocking]")
		}
	}
	if len(marks) == 0 {
		return ""
	}
	return " " + strings.Join(marks, " ")
}

// hidden elements take no part in either rendering.
func hidden(n *html.Node) bool {
	return !n.IsElement() || !n.Inertable()
}

// Text writes the composed tree below the document anchor. Shadow roots are
// shown under their host; a slot lists the nodes distributed into it,
// prefixed with "> ". Light children not assigned to any slot are not part of
// the composed tree and are omitted.
func Text(doc *html.Document, w io.Writer, opts ...Option) error {
	o := newOptions(opts)
	var sb strings.Builder
	for _, n := range roots(doc) {
		o.text(&sb, n, 0, false)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (o options) text(sb *strings.Builder, n *html.Node, depth int, distributed bool) {
	if hidden(n) {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	if distributed {
		sb.WriteString("> ")
	}
	sb.WriteString(n.String())
	sb.WriteString(o.marker(n))
	sb.WriteByte('\n')

	if n.IsInsertionPoint() && n.ShadowScope() != nil {
		if nodes := html.DistributedNodes(n); len(nodes) > 0 {
			for _, d := range nodes {
				o.text(sb, d, depth+1, true)
			}
			return
		}
	}
	children := n.Children
	if n.ShadowRoot != nil {
		sb.WriteString(strings.Repeat("  ", depth+1))
		sb.WriteString(n.ShadowRoot.String())
		sb.WriteByte('\n')
		children = n.ShadowRoot.Children
		depth++
	}
	for _, c := range children {
		o.text(sb, c, depth+1, false)
	}
}

// roots returns the body, or the top-level elements of a document without
// one.
func roots(doc *html.Document) []*html.Node {
	if anchor := doc.Anchor(); anchor != doc.Root {
		return []*html.Node{anchor}
	}
	var out []*html.Node
	for _, c := range doc.Root.Children {
		if !hidden(c) {
			out = append(out, c)
		}
	}
	return out
}

// flatChildren returns the rendered children of n: the shadow tree for a
// host, with insertion points replaced by what is distributed into them, or
// by their fallback content when nothing is.
func flatChildren(n *html.Node) []*html.Node {
	src := n.Children
	if n.ShadowRoot != nil {
		src = n.ShadowRoot.Children
	}
	var out []*html.Node
	for _, c := range src {
		if hidden(c) {
			continue
		}
		if c.IsInsertionPoint() && c.ShadowScope() != nil {
			if nodes := html.DistributedNodes(c); len(nodes) > 0 {
				out = append(out, nodes...)
			} else {
				out = append(out, flatChildren(c)...)
			}
			continue
		}
		out = append(out, c)
	}
	return out
}
