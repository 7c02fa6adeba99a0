package tree

import (
	"strings"

	"filtertree/internal/textutil"
)

// Origin records which source contributed a node. It is kept for audit only
// and never participates in matching or equality.
type Origin string

const (
	OriginPrimary   Origin = "primary"
	OriginSecondary Origin = "secondary"
)

// PathSeparator joins names in human-readable node paths.
const PathSeparator = " > "

// Node is a single labeled entity in the hierarchy.
type Node struct {
	Name     string
	Level    int
	Parent   *Node
	Children []*Node
	ID       string
	Origin   Origin

	// OutOfOrder marks nodes attached by the builder's missing-parent
	// fallback. SourceLevel is the level the input claimed for them.
	OutOfOrder  bool
	SourceLevel int
}

// NewNode creates a detached node.
func NewNode(name string, origin Origin) *Node {
	return &Node{Name: strings.TrimSpace(name), Origin: origin}
}

// AddChild attaches child as the last child of n and sets its level.
func (n *Node) AddChild(child *Node) *Node {
	child.Parent = n
	child.Level = n.Level + 1
	n.Children = append(n.Children, child)
	return child
}

// Key returns the normalized comparison key of the node's current name.
func (n *Node) Key() string {
	return textutil.Normalize(n.Name)
}

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// Ancestors returns the chain from n's parent up to its root.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// PathNames returns the names from the root down to n, inclusive.
func (n *Node) PathNames() []string {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	names := make([]string, depth)
	for p := n; p != nil; p = p.Parent {
		depth--
		names[depth] = p.Name
	}
	return names
}

// Path renders the root-to-node path for logs and reports.
func (n *Node) Path() string {
	return strings.Join(n.PathNames(), PathSeparator)
}

// Descendants counts every node below n.
func (n *Node) Descendants() int {
	total := 0
	for _, c := range n.Children {
		total += 1 + c.Descendants()
	}
	return total
}
