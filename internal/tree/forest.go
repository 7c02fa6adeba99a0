package tree

import "fmt"

// Forest is an ordered list of root nodes.
type Forest struct {
	Roots []*Node
}

// New returns an empty forest.
func New() *Forest {
	return &Forest{}
}

// AddRoot appends a root node at level 0.
func (f *Forest) AddRoot(n *Node) *Node {
	n.Parent = nil
	n.Level = 0
	f.Roots = append(f.Roots, n)
	return n
}

// Walk visits every node in pre-order (parent before children, children in
// insertion order). Returning false from fn stops the walk.
func (f *Forest) Walk(fn func(*Node) bool) {
	if f == nil {
		return
	}
	var visit func([]*Node) bool
	visit = func(nodes []*Node) bool {
		for _, n := range nodes {
			if !fn(n) {
				return false
			}
			if !visit(n.Children) {
				return false
			}
		}
		return true
	}
	visit(f.Roots)
}

// Nodes returns every node in pre-order.
func (f *Forest) Nodes() []*Node {
	var out []*Node
	f.Walk(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Len counts all nodes in the forest.
func (f *Forest) Len() int {
	count := 0
	f.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Levels groups nodes by level, each group in pre-order.
func (f *Forest) Levels() [][]*Node {
	var levels [][]*Node
	f.Walk(func(n *Node) bool {
		for len(levels) <= n.Level {
			levels = append(levels, nil)
		}
		levels[n.Level] = append(levels[n.Level], n)
		return true
	})
	return levels
}

// LevelCounts returns the number of nodes at each level.
func (f *Forest) LevelCounts() []int {
	levels := f.Levels()
	counts := make([]int, len(levels))
	for i, nodes := range levels {
		counts[i] = len(nodes)
	}
	return counts
}

// Clone deep-copies the forest. The copy shares no nodes with f.
func (f *Forest) Clone() *Forest {
	out := New()
	if f == nil {
		return out
	}
	var copyNode func(src, parent *Node) *Node
	copyNode = func(src, parent *Node) *Node {
		dst := &Node{
			Name:        src.Name,
			Level:       src.Level,
			Parent:      parent,
			ID:          src.ID,
			Origin:      src.Origin,
			OutOfOrder:  src.OutOfOrder,
			SourceLevel: src.SourceLevel,
		}
		if len(src.Children) > 0 {
			dst.Children = make([]*Node, 0, len(src.Children))
			for _, c := range src.Children {
				dst.Children = append(dst.Children, copyNode(c, dst))
			}
		}
		return dst
	}
	for _, r := range f.Roots {
		out.Roots = append(out.Roots, copyNode(r, nil))
	}
	return out
}

// Equal reports whether two forests have the same shape and names. IDs,
// origins and fallback flags are ignored.
func Equal(a, b *Forest) bool {
	var same func(x, y []*Node) bool
	same = func(x, y []*Node) bool {
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i].Name != y[i].Name || x[i].Level != y[i].Level {
				return false
			}
			if !same(x[i].Children, y[i].Children) {
				return false
			}
		}
		return true
	}
	var ra, rb []*Node
	if a != nil {
		ra = a.Roots
	}
	if b != nil {
		rb = b.Roots
	}
	return same(ra, rb)
}

// levelNames label the six levels of the category hierarchy.
var levelNames = []string{"specialty", "subspecialty", "group", "topic", "subtopic", "detail"}

// LevelName returns a label for level, e.g. "topic", or "level N" beyond
// the named levels.
func LevelName(level int) string {
	if level >= 0 && level < len(levelNames) {
		return levelNames[level]
	}
	return fmt.Sprintf("level %d", level)
}
