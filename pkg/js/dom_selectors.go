package js

import (
	"strings"

	"blockade/pkg/html"
	"blockade/pkg/selector"

	"github.com/dop251/goja"
)

// registerQuerySelectors adds querySelector/querySelectorAll to a document object.
func registerQuerySelectors(ctx *domContext, obj *goja.Object, root *html.Node) {
	obj.Set("querySelector", querySelectorFn(ctx, root))
	obj.Set("querySelectorAll", querySelectorAllFn(ctx, root))
}

// parseSelector reads argument 0 as a selector group, throwing like the DOM
// does on a missing or invalid selector.
func parseSelector(ctx *domContext, call goja.FunctionCall, method string) selector.Group {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': 1 argument required", method))
	}
	src := call.Arguments[0].String()
	g, err := selector.Parse(src)
	if err != nil {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': '%s' is not a valid selector", method, src))
	}
	return g
}

// querySelectorFn returns a JS function implementing querySelector. The
// search stays in root's own tree and does not enter shadow roots.
func querySelectorFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		g := parseSelector(ctx, call, "querySelector")
		return ctx.nodeOrNull(findFirst(root, func(n *html.Node) bool { return n.Matches(g) }))
	}
}

// querySelectorAllFn returns a JS function implementing querySelectorAll.
func querySelectorAllFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		g := parseSelector(ctx, call, "querySelectorAll")
		return ctx.elementArray(findAll(root, func(n *html.Node) bool { return n.Matches(g) }))
	}
}

// matchesFn returns a JS function implementing element.matches(selector).
func matchesFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		g := parseSelector(ctx, call, "matches")
		return ctx.vm.ToValue(node.Matches(g))
	}
}

// closestFn returns a JS function implementing element.closest(selector).
// The search stops at the shadow root or document the element lives in.
func closestFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		g := parseSelector(ctx, call, "closest")
		for cur := node; cur.IsElement() && cur.TagName != "document"; cur = cur.Parent {
			if cur.Matches(g) {
				return ctx.elementProxy(cur)
			}
		}
		return goja.Null()
	}
}

func (ctx *domContext) byTagNameFn(root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		tag := strings.ToLower(call.Arguments[0].String())
		return ctx.elementArray(findAll(root, func(n *html.Node) bool {
			return tag == "*" || n.TagName == tag
		}))
	}
}

func (ctx *domContext) byClassNameFn(root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		want := strings.Fields(call.Arguments[0].String())
		if len(want) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(findAll(root, func(n *html.Node) bool {
			have, _ := n.GetAttribute("class")
			classes := strings.Fields(have)
			for _, w := range want {
				if !containsToken(classes, w) {
					return false
				}
			}
			return true
		}))
	}
}
