package js

import "testing"

func TestCreateAndAppend(t *testing.T) {
	doc := run(t, `<div id="root"></div>`, `
		var root = document.getElementById("root");
		var p = document.createElement("P");
		p.appendChild(document.createTextNode("hi"));
		if (root.appendChild(p) !== p) throw new Error("appendChild returns the child");
		if (p.parentNode !== root) throw new Error("parent");
	`)
	if got := byID(t, doc, "root").Serialize(); got != "<p>hi</p>" {
		t.Errorf("innerHTML = %q", got)
	}
}

func TestInsertAndRemove(t *testing.T) {
	doc := run(t, `<ul id="l"><li id="a"></li><li id="c"></li></ul>`, `
		var l = document.getElementById("l");
		var b = document.createElement("li");
		b.id = "b";
		l.insertBefore(b, document.getElementById("c"));
		var d = document.createElement("li");
		d.id = "d";
		l.insertBefore(d, null);
		l.removeChild(document.getElementById("a"));
		var threw = false;
		try { l.removeChild(document.createElement("li")); } catch (e) { threw = true; }
		if (!threw) throw new Error("removing a non-child should throw");
		threw = false;
		try { b.appendChild(l); } catch (e) { threw = true; }
		if (!threw) throw new Error("cycles should throw");
	`)
	want := `<li id="b"></li><li id="c"></li><li id="d"></li>`
	if got := byID(t, doc, "l").Serialize(); got != want {
		t.Errorf("innerHTML = %q, want %q", got, want)
	}
}

func TestConvenienceMutations(t *testing.T) {
	doc := run(t, `<div id="box"><span id="mid"></span></div>`, `
		var box = document.getElementById("box");
		var mid = document.getElementById("mid");
		box.prepend("start", document.createElement("i"));
		box.append(document.createElement("b"), "end");
		mid.before(document.createElement("em"));
		mid.after("!");
		var u = document.createElement("u");
		mid.replaceWith(u);
		if (mid.parentNode !== null) throw new Error("replaced node should be detached");
	`)
	want := `start<i></i><em></em><u></u>!<b></b>end`
	if got := byID(t, doc, "box").Serialize(); got != want {
		t.Errorf("innerHTML = %q, want %q", got, want)
	}
}

func TestInnerHTMLAndReplaceChildren(t *testing.T) {
	doc := run(t, `<div id="box"><p>old</p></div><div id="other"></div>`, `
		var box = document.getElementById("box");
		box.innerHTML = '<x-card><template shadowrootmode="open"><slot></slot></template><b>light</b></x-card>';
		var card = box.firstElementChild;
		if (card.shadowRoot === null) throw new Error("declarative shadow root in innerHTML");
		if (card.outerHTML !== '<x-card><template shadowrootmode="open"><slot></slot></template><b>light</b></x-card>') throw new Error("outerHTML: " + card.outerHTML);
		var other = document.getElementById("other");
		other.replaceChildren(card, "x");
		if (box.childNodes.length !== 0) throw new Error("card should have moved");
	`)
	if got := byID(t, doc, "other").ElementChildren()[0].TagName; got != "x-card" {
		t.Errorf("first child = %q", got)
	}
}

func TestCloneNode(t *testing.T) {
	run(t, `<div id="src" class="a"><span>x</span></div>`, `
		var src = document.getElementById("src");
		var shallow = src.cloneNode();
		var deep = src.cloneNode(true);
		if (shallow.childNodes.length !== 0 || deep.childNodes.length !== 1) throw new Error("clone depth");
		if (deep === src || deep.className !== "a" || deep.parentNode !== null) throw new Error("clone identity");
	`)
}
