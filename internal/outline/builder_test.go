package outline

import (
	"errors"
	"math/rand"
	"testing"

	"filtertree/internal/services"
	"filtertree/internal/tree"
)

func records(pairs ...any) []Record {
	out := make([]Record, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Record{Text: pairs[i].(string), Level: pairs[i+1].(int)})
	}
	return out
}

func TestBuildChain(t *testing.T) {
	res := Build(records("Cardiology", 0, "Arrhythmia", 1, "AV Block", 2), Options{})
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Forest.Roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(res.Forest.Roots))
	}
	root := res.Forest.Roots[0]
	if root.Name != "Cardiology" || root.Level != 0 {
		t.Fatalf("root = %q level %d", root.Name, root.Level)
	}
	if len(root.Children) != 1 || root.Children[0].Name != "Arrhythmia" || root.Children[0].Level != 1 {
		t.Fatalf("unexpected level-1 children: %+v", root.Children)
	}
	leaf := root.Children[0]
	if len(leaf.Children) != 1 || leaf.Children[0].Name != "AV Block" || leaf.Children[0].Level != 2 {
		t.Fatalf("unexpected level-2 children: %+v", leaf.Children)
	}
	if leaf.Children[0].Origin != tree.OriginPrimary {
		t.Fatalf("origin = %q, want primary", leaf.Children[0].Origin)
	}
}

func TestBuildOutOfOrderAttachesToDeepestOpenNode(t *testing.T) {
	res := Build(records("Cardiology", 0, "X", 3), Options{})
	root := res.Forest.Roots[0]
	if len(root.Children) != 1 {
		t.Fatalf("X was dropped or misplaced: %+v", root.Children)
	}
	x := root.Children[0]
	if x.Name != "X" || !x.OutOfOrder || x.SourceLevel != 3 || x.Level != 1 {
		t.Fatalf("unexpected X node: %+v", x)
	}
	if res.Flagged != 1 || len(res.Warnings) != 1 {
		t.Fatalf("flagged = %d warnings = %v", res.Flagged, res.Warnings)
	}
	if !errors.Is(res.Warnings[0].Kind, services.ErrOutOfOrderLevel) {
		t.Fatalf("warning kind = %v", res.Warnings[0].Kind)
	}
	if res.Warnings[0].Line != 2 {
		t.Fatalf("warning line = %d, want 2", res.Warnings[0].Line)
	}
}

func TestBuildOutOfOrderUnderLevelOne(t *testing.T) {
	res := Build(records("Cardiology", 0, "Arrhythmia", 1, "X", 3, "Y", 2), Options{})
	arr := res.Forest.Roots[0].Children[0]
	if len(arr.Children) != 2 {
		t.Fatalf("Arrhythmia children = %d, want 2", len(arr.Children))
	}
	x, y := arr.Children[0], arr.Children[1]
	if x.Name != "X" || !x.OutOfOrder || x.Level != 2 {
		t.Fatalf("unexpected X: %+v", x)
	}
	if y.Name != "Y" || y.OutOfOrder || y.Level != 2 {
		t.Fatalf("unexpected Y: %+v", y)
	}
}

func TestBuildLeadingDeepRecordBecomesFlaggedRoot(t *testing.T) {
	res := Build(records("Orphan", 2, "Child", 1), Options{})
	if len(res.Forest.Roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(res.Forest.Roots))
	}
	orphan := res.Forest.Roots[0]
	if !orphan.OutOfOrder || orphan.Level != 0 {
		t.Fatalf("unexpected orphan: %+v", orphan)
	}
	if len(orphan.Children) != 1 || orphan.Children[0].Name != "Child" || orphan.Children[0].OutOfOrder {
		t.Fatalf("unexpected orphan children: %+v", orphan.Children)
	}
}

func TestBuildReplacesStackEntry(t *testing.T) {
	res := Build(records(
		"Cardiology", 0,
		"Arrhythmia", 1,
		"AV Block", 2,
		"Heart Failure", 1,
		"Acute", 2,
		"Pulmonology", 0,
		"Asthma", 1,
	), Options{})
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	roots := res.Forest.Roots
	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
	hf := roots[0].Children[1]
	if hf.Name != "Heart Failure" || len(hf.Children) != 1 || hf.Children[0].Name != "Acute" {
		t.Fatalf("unexpected heart failure subtree: %+v", hf)
	}
	if len(roots[0].Children[0].Children) != 1 {
		t.Fatal("earlier subtree lost descendants after stack replacement")
	}
	if roots[1].Children[0].Name != "Asthma" {
		t.Fatalf("unexpected pulmonology child: %+v", roots[1].Children)
	}
}

func TestBuildSkipsMalformed(t *testing.T) {
	in := []Record{
		{Text: "Cardiology", Level: 0},
		{Text: "   ", Level: 1},
		{Text: "Broken", Level: -1},
		{Text: "Arrhythmia", Level: 1},
	}
	res := Build(in, Options{})
	if res.Skipped != 2 || len(res.Warnings) != 2 {
		t.Fatalf("skipped = %d warnings = %v", res.Skipped, res.Warnings)
	}
	for _, w := range res.Warnings {
		if !errors.Is(w.Kind, services.ErrMalformedInput) {
			t.Fatalf("warning kind = %v", w.Kind)
		}
	}
	if res.Forest.Len() != 2 {
		t.Fatalf("Len = %d, want 2", res.Forest.Len())
	}
}

func TestBuildClampsToMaxDepth(t *testing.T) {
	res := Build(records("A", 0, "B", 1, "C", 2, "D", 3), Options{MaxDepth: 3})
	c := res.Forest.Roots[0].Children[0].Children[0]
	if len(c.Children) != 0 {
		t.Fatal("expected D to be clamped beside C, not under it")
	}
	b := res.Forest.Roots[0].Children[0]
	if len(b.Children) != 2 || b.Children[1].Name != "D" || b.Children[1].SourceLevel != 3 {
		t.Fatalf("unexpected clamp result: %+v", b.Children)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", res.Warnings)
	}
}

func TestBuildEmpty(t *testing.T) {
	res := Build(nil, Options{})
	if res.Forest == nil || res.Forest.Len() != 0 {
		t.Fatal("expected empty forest")
	}
}

// Levels that never jump more than one past the deepest open node always
// produce level == parent.level + 1 with no flagged nodes.
func TestBuildLevelProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iteration := 0; iteration < 200; iteration++ {
		n := rng.Intn(60) + 1
		in := make([]Record, 0, n)
		maxSeen := -1
		for i := 0; i < n; i++ {
			level := rng.Intn(maxSeen + 2)
			in = append(in, Record{Text: "node", Level: level})
			maxSeen = level
		}
		res := Build(in, Options{})
		if res.Flagged != 0 || len(res.Warnings) != 0 {
			t.Fatalf("iteration %d: unexpected warnings %v", iteration, res.Warnings)
		}
		if res.Forest.Len() != n {
			t.Fatalf("iteration %d: Len = %d, want %d", iteration, res.Forest.Len(), n)
		}
		res.Forest.Walk(func(node *tree.Node) bool {
			if node.Parent == nil && node.Level != 0 {
				t.Fatalf("iteration %d: root at level %d", iteration, node.Level)
			}
			if node.Parent != nil && node.Level != node.Parent.Level+1 {
				t.Fatalf("iteration %d: level %d under %d", iteration, node.Level, node.Parent.Level)
			}
			if node.Level != node.SourceLevel {
				t.Fatalf("iteration %d: level %d differs from source level %d", iteration, node.Level, node.SourceLevel)
			}
			return true
		})
	}
}
