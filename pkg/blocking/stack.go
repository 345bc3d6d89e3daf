package blocking

import (
	"fmt"

	"go.uber.org/zap"
)

// Stack is an ordered set of blocking elements. The most recently pushed
// element is the top; only it (and what it renders) stays interactive.
type Stack[E comparable] struct {
	tree     Tree[E]
	anchor   E
	log      *zap.Logger
	describe func(E) string

	elements []E
	owned    owner[E]
	history  *ring[Transition[E]]
	applying bool
}

// Option configures a Stack.
type Option[E comparable] func(*Stack[E])

// WithLogger sets the logger used for diagnostics. The default discards.
func WithLogger[E comparable](log *zap.Logger) Option[E] {
	return func(s *Stack[E]) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHistory keeps the last n transitions for inspection.
func WithHistory[E comparable](n int) Option[E] {
	return func(s *Stack[E]) {
		if n > 0 {
			s.history = newRing[Transition[E]](n)
		}
	}
}

// WithDescriber sets how elements are rendered in log fields.
func WithDescriber[E comparable](fn func(E) string) Option[E] {
	return func(s *Stack[E]) {
		if fn != nil {
			s.describe = fn
		}
	}
}

// New returns an empty stack over tree. Propagation stops at anchor, which is
// usually the document body.
func New[E comparable](tree Tree[E], anchor E, opts ...Option[E]) *Stack[E] {
	s := &Stack[E]{
		tree:     tree,
		anchor:   anchor,
		log:      zap.NewNop(),
		describe: func(e E) string { return fmt.Sprint(e) },
		owned:    make(owner[E]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Push makes element the new top. Pushing an element that is already on the
// stack logs a warning and changes nothing; it is not moved to the top.
func (s *Stack[E]) Push(element E) {
	var zero E
	if element == zero {
		s.log.Warn("ignoring push of empty element")
		return
	}
	if s.Has(element) {
		s.log.Warn("element already added to blocking elements", zap.String("element", s.describe(element)))
		return
	}
	if s.busy("push") {
		return
	}
	oldTop, _ := s.Top()
	s.elements = append(s.elements, element)
	s.topChanged(element, oldTop)
}

// Remove takes element off the stack and reports whether it was there.
// Only removing the top changes inert state.
func (s *Stack[E]) Remove(element E) bool {
	i := s.indexOf(element)
	if i < 0 {
		return false
	}
	if s.busy("remove") {
		return false
	}
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	if i == len(s.elements) {
		newTop, _ := s.Top()
		s.topChanged(newTop, element)
	}
	return true
}

// Pop removes and returns the top element.
func (s *Stack[E]) Pop() (E, bool) {
	top, ok := s.Top()
	if !ok || !s.Remove(top) {
		var zero E
		return zero, false
	}
	return top, true
}

// Top returns the current top element.
func (s *Stack[E]) Top() (E, bool) {
	if len(s.elements) == 0 {
		var zero E
		return zero, false
	}
	return s.elements[len(s.elements)-1], true
}

// All returns a copy of the stack, bottom first.
func (s *Stack[E]) All() []E {
	return append([]E(nil), s.elements...)
}

func (s *Stack[E]) Has(element E) bool {
	return s.indexOf(element) >= 0
}

func (s *Stack[E]) Len() int {
	return len(s.elements)
}

// Anchor returns the node propagation stops at.
func (s *Stack[E]) Anchor() E {
	return s.anchor
}

// Destroy unwinds the stack from the top down as if each element were popped
// in turn, leaving nothing inerted by the stack. The stack is empty and can be
// used again afterwards.
func (s *Stack[E]) Destroy() {
	if s.busy("destroy") {
		return
	}
	var zero E
	for i := len(s.elements) - 1; i >= 0; i-- {
		next := zero
		if i > 0 {
			next = s.elements[i-1]
		}
		s.topChanged(next, s.elements[i])
	}
	s.elements = nil
	if len(s.owned) > 0 {
		// Elements moved between pushes can leave stragglers behind.
		s.log.Debug("releasing leftover inert elements", zap.Int("count", len(s.owned)))
		for e := range s.owned {
			s.tree.SetInert(e, false)
		}
		s.owned = make(owner[E])
	}
}

// History returns recorded transitions, oldest first. It is empty unless the
// stack was created WithHistory.
func (s *Stack[E]) History() []Transition[E] {
	if s.history == nil {
		return nil
	}
	return s.history.all()
}

func (s *Stack[E]) indexOf(element E) int {
	for i, e := range s.elements {
		if e == element {
			return i
		}
	}
	return -1
}

func (s *Stack[E]) busy(op string) bool {
	if s.applying {
		s.log.Error("reentrant blocking stack call ignored", zap.String("op", op))
	}
	return s.applying
}

func (s *Stack[E]) topChanged(newTop, oldTop E) {
	s.applying = true
	defer func() { s.applying = false }()

	t := Diff(s.tree, s.anchor, newTop, oldTop).apply(s.tree, s.owned)
	if s.history != nil {
		s.history.add(t)
	}
	if ce := s.log.Check(zap.DebugLevel, "top changed"); ce != nil {
		var zero E
		fields := []zap.Field{
			zap.Int("depth", len(s.elements)),
			zap.Int("shared", t.Shared),
			zap.Int("pairs", t.Pairs),
			zap.Int("sweeps", t.Sweeps),
			zap.Int("released", t.Released),
			zap.Int("blocked", t.Blocked),
		}
		if newTop != zero {
			fields = append(fields, zap.String("new", s.describe(newTop)))
		}
		if oldTop != zero {
			fields = append(fields, zap.String("old", s.describe(oldTop)))
		}
		ce.Write(fields...)
	}
}

// ring is a fixed-size buffer that overwrites its oldest entry.
type ring[T any] struct {
	items []T
	next  int
	full  bool
}

func newRing[T any](n int) *ring[T] {
	return &ring[T]{items: make([]T, n)}
}

func (r *ring[T]) add(v T) {
	r.items[r.next] = v
	r.next = (r.next + 1) % len(r.items)
	if r.next == 0 {
		r.full = true
	}
}

func (r *ring[T]) all() []T {
	if !r.full {
		return append([]T(nil), r.items[:r.next]...)
	}
	out := make([]T, 0, len(r.items))
	out = append(out, r.items[r.next:]...)
	return append(out, r.items[:r.next]...)
}
