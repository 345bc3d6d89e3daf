package js

import (
	"strings"

	"blockade/pkg/html"

	"github.com/dop251/goja"
)

// newClassListProxy creates a JS object implementing the DOMTokenList view of
// an element's class attribute.
func newClassListProxy(ctx *domContext, node *html.Node) goja.Value {
	return ctx.vm.NewDynamicObject(&classListAccessor{ctx: ctx, node: node})
}

type classListAccessor struct {
	ctx  *domContext
	node *html.Node
}

var classListKeys = []string{"length", "value", "add", "remove", "toggle", "contains", "replace", "item", "toString"}

// set adds or removes token and reports whether it is present afterwards.
func (cl *classListAccessor) set(token string, on bool) bool {
	cl.node.SetClass(token, on)
	return on
}

func (cl *classListAccessor) tokens(call goja.FunctionCall, method string) []string {
	out := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		token := arg.String()
		if token == "" || strings.ContainsAny(token, " \t\n\f\r") {
			panic(cl.ctx.vm.NewTypeError("Failed to execute '%s' on 'DOMTokenList': invalid token %q", method, token))
		}
		out[i] = token
	}
	return out
}

func (cl *classListAccessor) Get(key string) goja.Value {
	vm := cl.ctx.vm
	classes := cl.node.Classes()

	switch key {
	case "length":
		return vm.ToValue(len(classes))
	case "value":
		return vm.ToValue(strings.Join(classes, " "))
	case "add", "remove":
		on := key == "add"
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			for _, token := range cl.tokens(call, key) {
				cl.set(token, on)
			}
			return goja.Undefined()
		})
	case "toggle":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				panic(vm.NewTypeError("Failed to execute 'toggle': 1 argument required"))
			}
			token := cl.tokens(call, "toggle")[0]
			on := !cl.node.HasClass(token)
			if len(call.Arguments) > 1 && !goja.IsUndefined(call.Arguments[1]) {
				on = call.Arguments[1].ToBoolean()
			}
			return vm.ToValue(cl.set(token, on))
		})
	case "contains":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(len(call.Arguments) > 0 && cl.node.HasClass(call.Arguments[0].String()))
		})
	case "replace":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'replace': 2 arguments required"))
			}
			old, repl := call.Arguments[0].String(), call.Arguments[1].String()
			cls := cl.node.Classes()
			for i, c := range cls {
				if c == old {
					cls[i] = repl
					cl.node.SetAttribute("class", strings.Join(cls, " "))
					return vm.ToValue(true)
				}
			}
			return vm.ToValue(false)
		})
	case "item":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			if i := int(call.Arguments[0].ToInteger()); i >= 0 && i < len(classes) {
				return vm.ToValue(classes[i])
			}
			return goja.Null()
		})
	case "toString":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(strings.Join(classes, " "))
		})
	}
	if i, ok := indexKey(key); ok && i < len(classes) {
		return vm.ToValue(classes[i])
	}
	return goja.Undefined()
}

func (cl *classListAccessor) Set(key string, val goja.Value) bool {
	if key != "value" {
		return false
	}
	cl.node.SetAttribute("class", val.String())
	return true
}

func (cl *classListAccessor) Has(key string) bool {
	if containsToken(classListKeys, key) {
		return true
	}
	i, ok := indexKey(key)
	return ok && i < len(cl.node.Classes())
}

func (cl *classListAccessor) Delete(key string) bool {
	return false
}

func (cl *classListAccessor) Keys() []string {
	return classListKeys
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}
