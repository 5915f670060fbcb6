package keel

import (
	"github.com/go-keel/keel/component"
)

// activeSet is the ordered label -> Component mapping of currently installed
// components. Iteration order equals installation order; callers observe that
// order through every aggregate query, so it is load-bearing, not cosmetic.
//
// An activeSet is replaced as a unit when the installed set changes; the
// override stack stores whole sets, never diffs.
type activeSet struct {
	// order holds labels in installation order
	order []string
	// byLabel maps labels to their descriptors
	byLabel map[string]component.Component
}

func newActiveSet() *activeSet {
	return &activeSet{
		byLabel: make(map[string]component.Component),
	}
}

// insert adds a component, preserving insertion order.
// Returns false if the label is already present.
func (s *activeSet) insert(c component.Component) bool {
	label := c.Label()
	if _, exists := s.byLabel[label]; exists {
		return false
	}
	s.order = append(s.order, label)
	s.byLabel[label] = c
	return true
}

// get returns the component installed under label.
func (s *activeSet) get(label string) (component.Component, bool) {
	c, ok := s.byLabel[label]
	return c, ok
}

// len returns the number of installed components.
func (s *activeSet) len() int {
	return len(s.order)
}

// components returns the descriptors in installation order.
func (s *activeSet) components() []component.Component {
	out := make([]component.Component, 0, len(s.order))
	for _, label := range s.order {
		out = append(out, s.byLabel[label])
	}
	return out
}

// hasQualified reports whether a component with the given qualified name is
// installed.
func (s *activeSet) hasQualified(qualifiedName string) bool {
	for _, label := range s.order {
		if s.byLabel[label].QualifiedName() == qualifiedName {
			return true
		}
	}
	return false
}

// restrict returns a new set holding only components whose qualified name is
// in keep, preserving the current order.
func (s *activeSet) restrict(keep map[string]bool) *activeSet {
	out := newActiveSet()
	for _, label := range s.order {
		c := s.byLabel[label]
		if keep[c.QualifiedName()] {
			out.insert(c)
		}
	}
	return out
}
