package blocking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// page builds:
//
//	body
//	├─ header
//	├─ main
//	│  ├─ a
//	│  ├─ b
//	│  ├─ c ─ c1
//	│  └─ tpl (template)
//	├─ script
//	└─ footer
func page() (*fakeNode, map[string]*fakeNode) {
	body := el("body",
		el("header"),
		el("main",
			el("a"),
			el("b"),
			el("c", el("c1")),
			kind("template", el("tpl")),
		),
		kind("script", el("script")),
		el("footer"),
	)
	return body, index(body)
}

func TestAncestorPath(t *testing.T) {
	body, n := page()
	tree := &fakeTree{}

	assert.Equal(t, []*fakeNode{n["c1"], n["c"], n["main"]}, AncestorPath[*fakeNode](tree, body, n["c1"]))
	assert.Empty(t, AncestorPath[*fakeNode](tree, body, nil))
	assert.Empty(t, AncestorPath[*fakeNode](tree, body, body))
}

func TestAncestorPathSkipsShadowRoots(t *testing.T) {
	inner := el("inner")
	host := el("host")
	attachShadow(host, el("wrap", inner))
	body := el("body", host)

	path := AncestorPath[*fakeNode](&fakeTree{}, body, inner)
	assert.Equal(t, []string{"inner", "wrap", "host"}, names(path))
}

func TestAncestorPathFollowsInsertionPoints(t *testing.T) {
	// x is a light child of h, routed through p1 and then p2, which lives
	// in h's shadow tree under w.
	p1 := el("p1")
	p2 := el("p2")
	x := el("x")
	x.points = []*fakeNode{p1, p2}
	h := el("h", x)
	attachShadow(h, el("w", p2))
	body := el("body", h)

	path := AncestorPath[*fakeNode](&fakeTree{}, body, x)
	assert.Equal(t, []string{"x", "p1", "p2", "w", "h"}, names(path))
}

func TestTopChangedFromEmpty(t *testing.T) {
	body, n := page()
	tree := &fakeTree{}

	tr := TopChanged(tree, body, n["a"], nil)

	assert.Equal(t, []string{"b", "c", "footer", "header"}, inertNames(body))
	assert.Equal(t, 2, tr.Sweeps)
	assert.Equal(t, 4, tr.Blocked)
	assert.Zero(t, tr.Released)
	for _, w := range tree.writes {
		assert.NotContains(t, []string{"tpl", "script"}, w.name, "non-inertable element written")
	}
}

func TestTopChangedSiblingPairOnlyTouchesBoth(t *testing.T) {
	body, n := page()
	tree := &fakeTree{}
	TopChanged(tree, body, n["a"], nil)
	tree.writes = nil

	tr := TopChanged(tree, body, n["b"], n["a"])

	assert.Equal(t, []write{{"b", false}, {"a", true}}, tree.writes)
	assert.Equal(t, 1, tr.Shared)
	assert.Equal(t, 1, tr.Pairs)
	assert.Zero(t, tr.Sweeps)

	// Same final state as sweeping from scratch.
	fresh, fn := page()
	TopChanged(&fakeTree{}, fresh, fn["b"], nil)
	assert.Equal(t, inertNames(fresh), inertNames(body))
}

func TestTopChangedDeeperTarget(t *testing.T) {
	body, n := page()
	tree := &fakeTree{}
	TopChanged(tree, body, n["a"], nil)

	TopChanged(tree, body, n["c1"], n["a"])

	fresh, fn := page()
	TopChanged(&fakeTree{}, fresh, fn["c1"], nil)
	assert.Equal(t, inertNames(fresh), inertNames(body))
	assert.Equal(t, []string{"a", "b", "footer", "header"}, inertNames(body))
}

func TestTopChangedToEmptyReleasesEverything(t *testing.T) {
	body, n := page()
	tree := &fakeTree{}
	TopChanged(tree, body, n["c1"], nil)
	require.NotEmpty(t, inertNames(body))

	tr := TopChanged(tree, body, nil, n["c1"])

	assert.Empty(t, inertNames(body))
	assert.Zero(t, tr.Blocked)
}

func TestDistributedContentIsExempt(t *testing.T) {
	// dist is a structural sibling of host but rendered inside host's
	// shadow root.
	dist := el("dist")
	host := el("host")
	root := attachShadow(host, el("slot"))
	root.distributed = []*fakeNode{dist}
	body := el("body", host, dist, el("other"))
	n := index(body)
	tree := &fakeTree{}

	TopChanged(tree, body, host, nil)
	assert.Equal(t, []string{"other"}, inertNames(body))

	// Moving to a sibling must inert dist again.
	TopChanged(tree, body, n["other"], host)
	assert.Equal(t, []string{"dist", "host"}, inertNames(body))

	// And back: dist is released although no level is swept.
	tr := TopChanged(tree, body, host, n["other"])
	assert.Equal(t, []string{"other"}, inertNames(body))
	assert.Zero(t, tr.Sweeps)
}

func TestDiffDoesNotWrite(t *testing.T) {
	body, n := page()
	tree := &fakeTree{}

	d := Diff[*fakeNode](tree, body, n["a"], nil)

	assert.Empty(t, tree.writes)
	assert.ElementsMatch(t, []string{"header", "script", "footer", "b", "c", "tpl"}, names(d.Block))
	assert.Equal(t, []string{"main", "a"}, names(d.Release))
}

func TestApplyBlockWinsOverRelease(t *testing.T) {
	x := el("x")
	tree := &fakeTree{}
	d := Delta[*fakeNode]{Release: []*fakeNode{x}, Block: []*fakeNode{x}}

	tr := d.Apply(tree)

	assert.True(t, x.inert)
	assert.Equal(t, 1, tr.Blocked)
	assert.Zero(t, tr.Released)
}

func names(nodes []*fakeNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.name
	}
	return out
}
