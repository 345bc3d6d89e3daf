package js

import (
	"blockade/pkg/html"

	"github.com/dop251/goja"
)

// detach removes n from its current parent, if any.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// toNodes converts the arguments of append-style methods into detached
// nodes. Non-node arguments become text nodes.
func (e *elementAccessor) toNodes(args []goja.Value) []*html.Node {
	nodes := make([]*html.Node, 0, len(args))
	for _, arg := range args {
		if n := e.ctx.unwrapNode(arg); n != nil {
			detach(n)
			nodes = append(nodes, n)
			continue
		}
		nodes = append(nodes, &html.Node{Type: html.TextNode, Text: arg.String()})
	}
	return nodes
}

// checkInsert throws when inserting child would create a cycle or put a
// shadow root into a tree.
func (e *elementAccessor) checkInsert(child *html.Node, method string) {
	if child.Type == html.FragmentNode {
		panic(e.ctx.vm.NewTypeError("Failed to execute '%s': a shadow root cannot be inserted", method))
	}
	for cur := e.node; cur != nil; cur = cur.Parent {
		if cur == child {
			panic(e.ctx.vm.NewTypeError("Failed to execute '%s': the new child contains the parent", method))
		}
	}
}

func (e *elementAccessor) appendChildFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.ctx.requireNode(call, 0, "appendChild")
		e.checkInsert(child, "appendChild")
		detach(child)
		e.node.AddChild(child)
		return e.ctx.elementProxy(child)
	}
}

func (e *elementAccessor) removeChildFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.ctx.requireNode(call, 0, "removeChild")
		if e.node.RemoveChild(child) == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
		}
		return e.ctx.elementProxy(child)
	}
}

// insertBeforeFn implements node.insertBefore(newNode, refNode); a null or
// missing refNode appends.
func (e *elementAccessor) insertBeforeFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.ctx.requireNode(call, 0, "insertBefore")
		e.checkInsert(child, "insertBefore")
		var ref *html.Node
		if len(call.Arguments) > 1 {
			ref = e.ctx.unwrapNode(call.Arguments[1])
		}
		e.node.InsertBefore(child, ref)
		return e.ctx.elementProxy(child)
	}
}

// setInnerHTML parses markup and replaces the node's children. Declarative
// shadow roots in the markup are attached to the parsed elements.
func (e *elementAccessor) setInnerHTML(markup string) {
	for _, c := range e.node.Children {
		c.Parent = nil
	}
	e.node.Children = nil
	if markup == "" {
		return
	}
	children, err := html.ParseFragment(markup)
	if err != nil {
		panic(e.ctx.vm.NewTypeError("Failed to set 'innerHTML': %v", err))
	}
	for _, child := range children {
		e.node.AddChild(child)
	}
}

func (e *elementAccessor) appendFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		for _, n := range e.toNodes(call.Arguments) {
			e.node.AddChild(n)
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) prependFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		nodes := e.toNodes(call.Arguments)
		var first *html.Node
		if len(e.node.Children) > 0 {
			first = e.node.Children[0]
		}
		for _, n := range nodes {
			e.node.InsertBefore(n, first)
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) beforeFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parent := e.node.Parent
		if parent == nil {
			return goja.Undefined()
		}
		for _, n := range e.toNodes(call.Arguments) {
			parent.InsertBefore(n, e.node)
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) afterFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parent := e.node.Parent
		if parent == nil {
			return goja.Undefined()
		}
		nodes := e.toNodes(call.Arguments)
		var ref *html.Node
		if i := e.node.IndexInParent(); i+1 < len(parent.Children) {
			ref = parent.Children[i+1]
		}
		for _, n := range nodes {
			parent.InsertBefore(n, ref)
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) replaceWithFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parent := e.node.Parent
		if parent == nil {
			return goja.Undefined()
		}
		for _, n := range e.toNodes(call.Arguments) {
			if n != e.node {
				parent.InsertBefore(n, e.node)
			}
		}
		parent.RemoveChild(e.node)
		return goja.Undefined()
	}
}

func (e *elementAccessor) replaceChildrenFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		nodes := e.toNodes(call.Arguments)
		for _, c := range e.node.Children {
			c.Parent = nil
		}
		e.node.Children = nil
		for _, n := range nodes {
			e.node.AddChild(n)
		}
		return goja.Undefined()
	}
}
