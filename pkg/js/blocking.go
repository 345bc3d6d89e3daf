package js

import (
	"blockade/pkg/blocking"
	"blockade/pkg/html"

	"github.com/dop251/goja"
)

// blockingAccessor backs document.$blockingElements.
type blockingAccessor struct {
	ctx   *domContext
	stack *blocking.Stack[*html.Node]
}

var blockingKeys = []string{"push", "remove", "pop", "has", "destructor", "top", "all"}

func newBlockingProxy(ctx *domContext, stack *blocking.Stack[*html.Node]) goja.Value {
	return ctx.vm.NewDynamicObject(&blockingAccessor{ctx: ctx, stack: stack})
}

func (b *blockingAccessor) Get(key string) goja.Value {
	vm := b.ctx.vm
	switch key {
	case "push":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			b.stack.Push(b.element(call, "push"))
			return goja.Undefined()
		})
	case "remove":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(b.stack.Remove(b.element(call, "remove")))
		})
	case "pop":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			top, ok := b.stack.Pop()
			if !ok {
				return goja.Undefined()
			}
			return b.ctx.elementProxy(top)
		})
	case "has":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			n := b.ctx.unwrapNode(call.Arguments[0])
			return vm.ToValue(n != nil && b.stack.Has(n))
		})
	case "destructor":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			b.stack.Destroy()
			return goja.Undefined()
		})
	case "top":
		top, _ := b.stack.Top()
		return b.ctx.nodeOrNull(top)
	case "all":
		return b.ctx.elementArray(b.stack.All())
	}
	return goja.Undefined()
}

// element unwraps the single element argument. Anything that is not an
// element proxy is a TypeError, as a non-Element is in the DOM.
func (b *blockingAccessor) element(call goja.FunctionCall, method string) *html.Node {
	n := b.ctx.requireNode(call, 0, method)
	if !n.IsElement() {
		panic(b.ctx.vm.NewTypeError("Failed to execute '%s' on 'BlockingElements': parameter 1 is not an Element", method))
	}
	return n
}

// Set rejects writes; the stack is only changed through its methods.
func (b *blockingAccessor) Set(key string, val goja.Value) bool {
	return false
}

func (b *blockingAccessor) Has(key string) bool {
	return containsToken(blockingKeys, key)
}

func (b *blockingAccessor) Delete(key string) bool {
	return false
}

func (b *blockingAccessor) Keys() []string {
	return blockingKeys
}
