package js

import (
	"strconv"
	"strings"

	"blockade/pkg/blocking"
	"blockade/pkg/html"

	"github.com/dop251/goja"
)

// domContext holds shared state for DOM bindings within a single execution.
// Each *html.Node maps to exactly one JS object so that === works, and the
// reverse map lets Go code recover the node from a JS argument.
type domContext struct {
	vm    *goja.Runtime
	doc   *html.Document
	cache map[*html.Node]*goja.Object
	nodes map[*goja.Object]*html.Node
}

func newDOMContext(vm *goja.Runtime, doc *html.Document) *domContext {
	return &domContext{
		vm:    vm,
		doc:   doc,
		cache: make(map[*html.Node]*goja.Object),
		nodes: make(map[*goja.Object]*html.Node),
	}
}

// registerDocument sets up the global `document` object on the goja runtime.
// With a non-nil stack, document.$blockingElements is bound to it.
func registerDocument(vm *goja.Runtime, doc *html.Document, stack *blocking.Stack[*html.Node]) *domContext {
	ctx := newDOMContext(vm, doc)

	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		id := call.Arguments[0].String()
		return ctx.nodeOrNull(findFirst(doc.Root, func(n *html.Node) bool {
			v, ok := n.GetAttribute("id")
			return ok && v == id
		}))
	})
	docObj.Set("getElementsByTagName", ctx.byTagNameFn(doc.Root))
	docObj.Set("getElementsByClassName", ctx.byClassNameFn(doc.Root))
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		return ctx.elementProxy(html.NewElement(call.Arguments[0].String()))
	})
	docObj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		return ctx.elementProxy(&html.Node{Type: html.TextNode, Text: text})
	})

	registerQuerySelectors(ctx, docObj, doc.Root)
	registerDocumentProperties(ctx, docObj, doc)
	if stack != nil {
		docObj.Set("$blockingElements", newBlockingProxy(ctx, stack))
	}

	vm.Set("document", docObj)
	return ctx
}

// elementArray creates a JS array of node proxies.
func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	values := make([]interface{}, len(nodes))
	for i, n := range nodes {
		values[i] = ctx.elementProxy(n)
	}
	return ctx.vm.NewArray(values...)
}

// elementProxy creates (or retrieves from cache) a JS object wrapping node.
func (ctx *domContext) elementProxy(node *html.Node) goja.Value {
	if obj, ok := ctx.cache[node]; ok {
		return obj
	}
	obj := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = obj
	ctx.nodes[obj] = node
	return obj
}

func (ctx *domContext) nodeOrNull(node *html.Node) goja.Value {
	if node == nil {
		return goja.Null()
	}
	return ctx.elementProxy(node)
}

// unwrapNode returns the node behind a proxy, or nil for anything else.
func (ctx *domContext) unwrapNode(val goja.Value) *html.Node {
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	return ctx.nodes[obj]
}

// requireNode unwraps argument i or throws a TypeError naming method.
func (ctx *domContext) requireNode(call goja.FunctionCall, i int, method string) *html.Node {
	if len(call.Arguments) <= i {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': %d argument(s) required", method, i+1))
	}
	node := ctx.unwrapNode(call.Arguments[i])
	if node == nil {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': parameter %d is not a Node", method, i+1))
	}
	return node
}

// elementAccessor implements goja.DynamicObject for element, text and shadow
// root proxies.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

var elementKeys = []string{
	"nodeType", "nodeName", "nodeValue", "tagName", "localName",
	"id", "className", "slot", "inert",
	"textContent", "innerHTML", "outerHTML",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute", "toggleAttribute",
	"children", "childNodes", "parentElement", "parentNode",
	"firstChild", "lastChild", "firstElementChild", "lastElementChild",
	"nextSibling", "previousSibling", "nextElementSibling", "previousElementSibling",
	"childElementCount",
	"shadowRoot", "attachShadow", "host", "mode", "assignedSlot", "assignedNodes",
	"appendChild", "removeChild", "insertBefore",
	"remove", "append", "prepend", "before", "after", "replaceWith", "replaceChildren",
	"cloneNode", "contains", "hasChildNodes",
	"querySelector", "querySelectorAll", "matches", "closest",
	"getElementsByTagName", "getElementsByClassName",
	"classList",
}

var elementKeySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(elementKeys))
	for _, k := range elementKeys {
		m[k] = struct{}{}
	}
	return m
}()

func (e *elementAccessor) fn(f func(goja.FunctionCall) goja.Value) goja.Value {
	return e.ctx.vm.ToValue(f)
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm
	n := e.node

	switch key {
	case "nodeType":
		switch n.Type {
		case html.TextNode:
			return vm.ToValue(3)
		case html.FragmentNode:
			return vm.ToValue(11)
		}
		return vm.ToValue(1)
	case "nodeName":
		switch n.Type {
		case html.TextNode:
			return vm.ToValue("#text")
		case html.FragmentNode:
			return vm.ToValue("#document-fragment")
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "nodeValue":
		if n.Type == html.TextNode {
			return vm.ToValue(n.Text)
		}
		return goja.Null()
	case "tagName":
		if !n.IsElement() {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "localName":
		if !n.IsElement() {
			return goja.Null()
		}
		return vm.ToValue(n.TagName)
	case "id", "slot":
		v, _ := n.GetAttribute(key)
		return vm.ToValue(v)
	case "className":
		v, _ := n.GetAttribute("class")
		return vm.ToValue(v)
	case "inert":
		return vm.ToValue(n.Inert())
	case "textContent":
		return vm.ToValue(textContent(n))
	case "innerHTML":
		return vm.ToValue(n.Serialize())
	case "outerHTML":
		return vm.ToValue(n.SerializeOuter())

	case "getAttribute":
		return e.fn(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			v, ok := n.GetAttribute(strings.ToLower(call.Arguments[0].String()))
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(v)
		})
	case "setAttribute":
		return e.fn(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'setAttribute': 2 arguments required"))
			}
			n.SetAttribute(strings.ToLower(call.Arguments[0].String()), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return e.fn(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			return vm.ToValue(n.HasAttribute(strings.ToLower(call.Arguments[0].String())))
		})
	case "removeAttribute":
		return e.fn(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				n.RemoveAttribute(strings.ToLower(call.Arguments[0].String()))
			}
			return goja.Undefined()
		})
	case "toggleAttribute":
		return e.fn(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				panic(vm.NewTypeError("Failed to execute 'toggleAttribute': 1 argument required"))
			}
			name := strings.ToLower(call.Arguments[0].String())
			on := !n.HasAttribute(name)
			if len(call.Arguments) > 1 && !goja.IsUndefined(call.Arguments[1]) {
				on = call.Arguments[1].ToBoolean()
			}
			if on {
				if !n.HasAttribute(name) {
					n.SetAttribute(name, "")
				}
			} else {
				n.RemoveAttribute(name)
			}
			return vm.ToValue(on)
		})

	case "children":
		return e.ctx.elementArray(n.ElementChildren())
	case "childNodes":
		return e.ctx.elementArray(n.Children)
	case "parentElement":
		if p := n.Parent; p.IsElement() && p.TagName != "document" {
			return e.ctx.elementProxy(p)
		}
		return goja.Null()
	case "parentNode":
		if p := n.Parent; p != nil && p.TagName != "document" {
			return e.ctx.elementProxy(p)
		}
		return goja.Null()
	case "firstChild", "lastChild", "firstElementChild", "lastElementChild",
		"nextSibling", "previousSibling", "nextElementSibling", "previousElementSibling":
		return e.ctx.nodeOrNull(e.relative(key))
	case "childElementCount":
		return vm.ToValue(len(n.ElementChildren()))

	case "shadowRoot":
		if n.ShadowRoot == nil || n.ShadowRoot.Mode == "closed" {
			return goja.Null()
		}
		return e.ctx.elementProxy(n.ShadowRoot)
	case "attachShadow":
		return e.fn(e.attachShadowFn())
	case "host":
		if n.Type != html.FragmentNode {
			return goja.Undefined()
		}
		return e.ctx.nodeOrNull(n.Host)
	case "mode":
		if n.Type != html.FragmentNode {
			return goja.Undefined()
		}
		return vm.ToValue(n.Mode)
	case "assignedSlot":
		slot := n.AssignedSlot()
		if slot == nil || slot.ShadowScope().Mode == "closed" {
			return goja.Null()
		}
		return e.ctx.elementProxy(slot)
	case "assignedNodes":
		return e.fn(func(call goja.FunctionCall) goja.Value {
			flatten := false
			if len(call.Arguments) > 0 && !goja.IsUndefined(call.Arguments[0]) && !goja.IsNull(call.Arguments[0]) {
				if v := call.Arguments[0].ToObject(vm).Get("flatten"); v != nil {
					flatten = v.ToBoolean()
				}
			}
			if flatten {
				return e.ctx.elementArray(html.DistributedNodes(n))
			}
			return e.ctx.elementArray(html.AssignedNodes(n))
		})

	case "appendChild":
		return e.fn(e.appendChildFn())
	case "removeChild":
		return e.fn(e.removeChildFn())
	case "insertBefore":
		return e.fn(e.insertBeforeFn())
	case "remove":
		return e.fn(func(goja.FunctionCall) goja.Value {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
			return goja.Undefined()
		})
	case "append":
		return e.fn(e.appendFn())
	case "prepend":
		return e.fn(e.prependFn())
	case "before":
		return e.fn(e.beforeFn())
	case "after":
		return e.fn(e.afterFn())
	case "replaceWith":
		return e.fn(e.replaceWithFn())
	case "replaceChildren":
		return e.fn(e.replaceChildrenFn())
	case "cloneNode":
		return e.fn(func(call goja.FunctionCall) goja.Value {
			deep := len(call.Arguments) > 0 && call.Arguments[0].ToBoolean()
			return e.ctx.elementProxy(n.CloneNode(deep))
		})
	case "contains":
		return e.fn(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			other := e.ctx.unwrapNode(call.Arguments[0])
			return vm.ToValue(other != nil && n.Contains(other))
		})
	case "hasChildNodes":
		return e.fn(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(len(n.Children) > 0)
		})

	case "querySelector":
		return e.fn(querySelectorFn(e.ctx, n))
	case "querySelectorAll":
		return e.fn(querySelectorAllFn(e.ctx, n))
	case "matches":
		return e.fn(matchesFn(e.ctx, n))
	case "closest":
		return e.fn(closestFn(e.ctx, n))
	case "getElementsByTagName":
		return e.fn(e.ctx.byTagNameFn(n))
	case "getElementsByClassName":
		return e.fn(e.ctx.byClassNameFn(n))

	case "classList":
		return newClassListProxy(e.ctx, n)
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	n := e.node
	switch key {
	case "textContent":
		setTextContent(n, val.String())
	case "className":
		n.SetAttribute("class", val.String())
	case "id", "slot":
		n.SetAttribute(key, val.String())
	case "inert":
		n.SetInert(val.ToBoolean())
	case "innerHTML":
		e.setInnerHTML(val.String())
	case "nodeValue":
		if n.Type == html.TextNode {
			n.Text = val.String()
		}
	default:
		return false
	}
	return true
}

func (e *elementAccessor) Has(key string) bool {
	_, ok := elementKeySet[key]
	return ok
}

func (e *elementAccessor) Delete(key string) bool {
	return false
}

func (e *elementAccessor) Keys() []string {
	return elementKeys
}

// attachShadowFn implements element.attachShadow({mode}).
func (e *elementAccessor) attachShadowFn() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		vm := e.ctx.vm
		mode := "open"
		if len(call.Arguments) > 0 && !goja.IsUndefined(call.Arguments[0]) && !goja.IsNull(call.Arguments[0]) {
			if v := call.Arguments[0].ToObject(vm).Get("mode"); v != nil && !goja.IsUndefined(v) {
				mode = v.String()
			}
		}
		if mode != "open" && mode != "closed" {
			panic(vm.NewTypeError("Failed to execute 'attachShadow': invalid mode %q", mode))
		}
		root, err := e.node.AttachShadow(mode)
		if err != nil {
			panic(vm.NewTypeError("Failed to execute 'attachShadow': %v", err))
		}
		return e.ctx.elementProxy(root)
	}
}

// textContent returns the concatenated text of a node and its descendants.
func textContent(node *html.Node) string {
	if node.Type == html.TextNode {
		return node.Text
	}
	var sb strings.Builder
	for _, child := range node.Children {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}

// setTextContent replaces all children with a single text node.
func setTextContent(node *html.Node, text string) {
	for _, c := range node.Children {
		c.Parent = nil
	}
	node.Children = nil
	node.AppendText(text)
}

// registerDocumentProperties adds document.body, document.head and
// document.documentElement. They are resolved once, when the document is
// attached.
func registerDocumentProperties(ctx *domContext, docObj *goja.Object, doc *html.Document) {
	var htmlNode, head *html.Node
	for _, child := range doc.Root.ElementChildren() {
		if child.TagName == "html" {
			htmlNode = child
		}
	}
	scope := doc.Root
	if htmlNode != nil {
		scope = htmlNode
	}
	for _, child := range scope.ElementChildren() {
		if child.TagName == "head" {
			head = child
		}
	}
	docObj.Set("documentElement", ctx.nodeOrNull(htmlNode))
	docObj.Set("head", ctx.nodeOrNull(head))
	docObj.Set("body", ctx.nodeOrNull(doc.Body()))
}

// indexKey reports whether key is an array index and returns it.
func indexKey(key string) (int, bool) {
	i, err := strconv.Atoi(key)
	return i, err == nil && i >= 0
}
