package js

import "testing"

func TestClassList(t *testing.T) {
	doc := run(t, `<x-trap-focus id="el" class="a b"></x-trap-focus>`, `
		var cl = document.getElementById("el").classList;
		if (cl.length !== 2 || cl[0] !== "a" || cl.item(1) !== "b" || cl.item(5) !== null) throw new Error("indexing");
		cl.add("c", "a");
		cl.remove("b");
		if (cl.value !== "a c") throw new Error("add/remove: " + cl.value);
		if (cl.toggle("a") !== false || cl.contains("a")) throw new Error("toggle off");
		if (cl.toggle("blocking", true) !== true || cl.toggle("blocking", true) !== true) throw new Error("forced toggle");
		if (!cl.replace("c", "d") || cl.replace("zz", "y")) throw new Error("replace");
		cl["add"]("e");
		cl[true ? "remove" : "add"]("e");
		var threw = false;
		try { cl.add("two words"); } catch (e) { threw = true; }
		if (!threw) throw new Error("tokens with spaces are invalid");
	`)
	if got, _ := byID(t, doc, "el").GetAttribute("class"); got != "d blocking" {
		t.Errorf("class = %q", got)
	}
}

func TestClassListValue(t *testing.T) {
	doc := run(t, `<p id="el"></p>`, `
		var el = document.getElementById("el");
		if (el.classList.length !== 0 || el.classList.toString() !== "") throw new Error("empty");
		el.classList.value = "x  y";
		if (el.classList.length !== 2) throw new Error("value setter");
	`)
	if got, _ := byID(t, doc, "el").GetAttribute("class"); got != "x  y" {
		t.Errorf("class = %q", got)
	}
}
