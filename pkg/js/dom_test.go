package js

import (
	"testing"
)

func TestGetElementById(t *testing.T) {
	run(t, `<div id="foo">hello</div><x-host id="host"><template shadowrootmode="open"><b id="hidden"></b></template></x-host>`, `
		var el = document.getElementById("foo");
		if (el === null) throw new Error("element not found");
		if (el !== document.getElementById("foo")) throw new Error("proxies should be identical");
		if (el.tagName !== "DIV" || el.localName !== "div") throw new Error("wrong names: " + el.tagName + " " + el.localName);
		if (document.getElementById("nope") !== null) throw new Error("expected null");
		if (document.getElementById("hidden") !== null) throw new Error("shadow content must not be found");
	`)
}

func TestGetElementsBy(t *testing.T) {
	run(t, `<p class="a b">one</p><p class="a">two</p><div class="b a">three</div>`, `
		if (document.getElementsByTagName("p").length !== 2) throw new Error("tag");
		if (document.getElementsByTagName("*").length !== 3) throw new Error("wildcard");
		if (document.getElementsByClassName("a").length !== 3) throw new Error("class a");
		if (document.getElementsByClassName("b a").length !== 2) throw new Error("class b a");
	`)
}

func TestAttributes(t *testing.T) {
	doc := run(t, `<div id="target" data-x="hello">text</div>`, `
		var el = document.getElementById("target");
		if (el.getAttribute("data-x") !== "hello") throw new Error("getAttribute");
		if (el.getAttribute("missing") !== null) throw new Error("missing attribute should be null");
		el.setAttribute("Data-Value", "42");
		el.removeAttribute("data-x");
		if (el.hasAttribute("data-x")) throw new Error("removeAttribute");
		if (el.toggleAttribute("hidden") !== true) throw new Error("toggle on");
		if (el.toggleAttribute("hidden", true) !== true) throw new Error("forced toggle");
		el.className = "card";
		el.slot = "title";
	`)
	n := byID(t, doc, "target")
	want := `<div class="card" data-value="42" hidden id="target" slot="title">text</div>`
	if got := n.SerializeOuter(); got != want {
		t.Errorf("outerHTML = %q, want %q", got, want)
	}
}

func TestInertProperty(t *testing.T) {
	doc := run(t, `<section id="s"></section>`, `
		var s = document.getElementById("s");
		if (s.inert !== false) throw new Error("not inert initially");
		s.inert = true;
		if (!s.inert || !s.hasAttribute("inert")) throw new Error("inert should reflect to the attribute");
		s.removeAttribute("inert");
		if (s.inert) throw new Error("attribute removal should clear inert");
		s.inert = 1;
	`)
	if !byID(t, doc, "s").Inert() {
		t.Error("truthy assignment should set inert")
	}
}

func TestTextContent(t *testing.T) {
	doc := run(t, `<p id="target">original <b>bold</b></p>`, `
		var p = document.getElementById("target");
		if (p.textContent !== "original bold") throw new Error("textContent: " + p.textContent);
		p.textContent = "changed";
		if (p.childNodes.length !== 1 || p.firstChild.nodeType !== 3) throw new Error("single text child expected");
	`)
	if got := byID(t, doc, "target").Serialize(); got != "changed" {
		t.Errorf("text = %q", got)
	}
}

func TestAttachShadow(t *testing.T) {
	doc := run(t, `<x-card id="open"><span id="light" slot="title">t</span></x-card><x-card id="closed"></x-card><style id="st"></style>`, `
		var host = document.getElementById("open");
		if (host.shadowRoot !== null) throw new Error("no shadow root yet");
		var root = host.attachShadow({mode: "open"});
		if (root.nodeType !== 11 || root.host !== host || root.mode !== "open") throw new Error("bad root");
		if (host.shadowRoot !== root) throw new Error("shadowRoot should be the attached root");
		root.innerHTML = '<header><slot name="title"></slot></header><slot></slot>';

		var light = document.getElementById("light");
		var slot = light.assignedSlot;
		if (slot === null || slot.getAttribute("name") !== "title") throw new Error("assignedSlot");
		if (slot.assignedNodes().length !== 1 || slot.assignedNodes()[0] !== light) throw new Error("assignedNodes");
		if (slot.parentNode.localName !== "header") throw new Error("slot parent");
		if (slot.parentNode.parentNode !== root) throw new Error("shadow children see the root as parent");

		var threw = false;
		try { host.attachShadow({mode: "open"}); } catch (e) { threw = true; }
		if (!threw) throw new Error("second attachShadow should throw");

		threw = false;
		try { document.getElementById("st").attachShadow({mode: "open"}); } catch (e) { threw = true; }
		if (!threw) throw new Error("style cannot host a shadow root");

		var closed = document.getElementById("closed");
		var croot = closed.attachShadow({mode: "closed"});
		if (closed.shadowRoot !== null) throw new Error("closed root must be hidden");
		croot.appendChild(document.createElement("slot"));
	`)
	closed := byID(t, doc, "closed")
	if closed.ShadowRoot == nil || closed.ShadowRoot.Mode != "closed" || len(closed.ShadowRoot.Children) != 1 {
		t.Errorf("closed root = %v", closed.ShadowRoot)
	}
}

func TestAssignedNodesFlatten(t *testing.T) {
	run(t, `<x-outer id="outer">
		<template shadowrootmode="open">
			<x-inner id="inner">
				<template shadowrootmode="open"><slot id="inner-slot"></slot></template>
				<slot id="outer-slot"></slot>
			</x-inner>
		</template>
		<p id="para">text</p>
	</x-outer>`, `
		var inner = document.getElementById("outer").shadowRoot.querySelector("#inner");
		var innerSlot = inner.shadowRoot.querySelector("#inner-slot");
		var direct = innerSlot.assignedNodes();
		if (direct.length !== 1 || direct[0].id !== "outer-slot") throw new Error("direct: " + direct.length);
		var flat = innerSlot.assignedNodes({flatten: true});
		if (flat.length !== 1 || flat[0] !== document.getElementById("para")) throw new Error("flattened");
		if (document.getElementById("para").assignedSlot.id !== "outer-slot") throw new Error("nearest slot");
	`)
}

func TestTraversal(t *testing.T) {
	run(t, `<ul id="list"><li id="a">a</li>text<li id="b">b</li><li id="c">c</li></ul>`, `
		var list = document.getElementById("list");
		var a = document.getElementById("a"), b = document.getElementById("b"), c = document.getElementById("c");
		if (list.firstChild !== a || list.lastChild !== c) throw new Error("first/last child");
		if (list.firstElementChild !== a || list.lastElementChild !== c) throw new Error("first/last element child");
		if (a.nextSibling.nodeType !== 3) throw new Error("nextSibling should be the text node");
		if (a.nextElementSibling !== b || b.previousElementSibling !== a) throw new Error("element siblings");
		if (a.previousSibling !== null || c.nextElementSibling !== null) throw new Error("edges");
		if (list.childElementCount !== 3 || list.children.length !== 3 || list.childNodes.length !== 4) throw new Error("counts");
		if (a.parentElement !== list || list.parentNode !== null) throw new Error("parents");
		if (!list.contains(b) || b.contains(list)) throw new Error("contains");
		if (!list.hasChildNodes()) throw new Error("hasChildNodes");
	`)
}

func TestDocumentProperties(t *testing.T) {
	run(t, `<html><head></head><body id="b"><p></p></body></html>`, `
		if (document.documentElement.localName !== "html") throw new Error("documentElement");
		if (document.head.localName !== "head") throw new Error("head");
		if (document.body.id !== "b") throw new Error("body");
	`)
	run(t, `<p></p>`, `
		if (document.body !== null || document.head !== null) throw new Error("fragment-like document has no body");
	`)
}
