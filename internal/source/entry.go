package source

// Entry is one node of the secondary hierarchy: a leaf (bare name) or a
// branch (name plus ordered children).
type Entry struct {
	Name     string
	Children []Entry
	Leaf     bool
}

// Leaf builds a childless entry.
func Leaf(name string) Entry {
	return Entry{Name: name, Leaf: true}
}

// Branch builds an entry with children. A branch with no children is still a
// branch; only the curated document's shape decides that.
func Branch(name string, children ...Entry) Entry {
	return Entry{Name: name, Children: children}
}

// Count returns the number of entries in e's subtree, e included.
func (e Entry) Count() int {
	total := 1
	for _, c := range e.Children {
		total += c.Count()
	}
	return total
}

// CountEntries sums Count over entries.
func CountEntries(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Count()
	}
	return total
}
