package tree

import (
	"errors"
	"fmt"
	"strings"
)

// Violation describes one broken invariant.
type Violation struct {
	Path   string
	Reason string
}

func (v Violation) String() string {
	return v.Path + ": " + v.Reason
}

// ValidationError aggregates all violations found by Validate.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%d invariant violation(s): %s", len(e.Violations), strings.Join(parts, "; "))
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// Validate checks parent/child consistency, levels, and normalized sibling
// uniqueness across the whole forest. It returns nil or a *ValidationError
// listing every violation in pre-order.
func Validate(f *Forest) error {
	if f == nil {
		return nil
	}
	var violations []Violation
	add := func(n *Node, format string, args ...any) {
		violations = append(violations, Violation{Path: n.Path(), Reason: fmt.Sprintf(format, args...)})
	}

	checkSiblings := func(nodes []*Node) {
		seen := make(map[string]*Node, len(nodes))
		for _, n := range nodes {
			key := n.Key()
			if prev, ok := seen[key]; ok {
				add(n, "sibling name %q duplicates %q", n.Name, prev.Name)
				continue
			}
			seen[key] = n
		}
	}

	checkSiblings(f.Roots)
	for _, r := range f.Roots {
		if r.Parent != nil {
			add(r, "root has a parent")
		}
		if r.Level != 0 {
			add(r, "root level is %d", r.Level)
		}
	}

	f.Walk(func(n *Node) bool {
		if strings.TrimSpace(n.Name) == "" {
			add(n, "empty name")
		}
		for _, c := range n.Children {
			if c.Parent != n {
				add(c, "parent reference does not point at owning node")
			}
			if c.Level != n.Level+1 {
				add(c, "level %d under parent level %d", c.Level, n.Level)
			}
		}
		checkSiblings(n.Children)
		return true
	})

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}
