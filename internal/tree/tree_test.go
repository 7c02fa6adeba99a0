package tree

import (
	"strings"
	"testing"
)

func sample() *Forest {
	f := New()
	cardio := f.AddRoot(NewNode("Cardiology", OriginPrimary))
	arr := cardio.AddChild(NewNode("Arrhythmia", OriginPrimary))
	arr.AddChild(NewNode("AV Block", OriginPrimary))
	cardio.AddChild(NewNode("Heart Failure", OriginSecondary))
	f.AddRoot(NewNode("Pulmonology", OriginPrimary))
	return f
}

func TestWalkPreOrder(t *testing.T) {
	f := sample()
	var names []string
	for _, n := range f.Nodes() {
		names = append(names, n.Name)
	}
	got := strings.Join(names, ",")
	want := "Cardiology,Arrhythmia,AV Block,Heart Failure,Pulmonology"
	if got != want {
		t.Fatalf("pre-order = %q, want %q", got, want)
	}
}

func TestWalkStops(t *testing.T) {
	f := sample()
	visited := 0
	f.Walk(func(n *Node) bool {
		visited++
		return n.Name != "Arrhythmia"
	})
	if visited != 2 {
		t.Fatalf("visited %d nodes, want 2", visited)
	}
}

func TestLevelsAndCounts(t *testing.T) {
	f := sample()
	counts := f.LevelCounts()
	want := []int{2, 2, 1}
	if len(counts) != len(want) {
		t.Fatalf("LevelCounts = %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("LevelCounts = %v, want %v", counts, want)
		}
	}
	if f.Len() != 5 {
		t.Fatalf("Len = %d, want 5", f.Len())
	}
	if d := f.Roots[0].Descendants(); d != 3 {
		t.Fatalf("Descendants = %d, want 3", d)
	}
}

func TestPath(t *testing.T) {
	f := sample()
	leaf := f.Roots[0].Children[0].Children[0]
	if got := leaf.Path(); got != "Cardiology > Arrhythmia > AV Block" {
		t.Fatalf("Path = %q", got)
	}
	if len(leaf.Ancestors()) != 2 || leaf.Ancestors()[0].Name != "Arrhythmia" {
		t.Fatalf("unexpected ancestors: %v", leaf.Ancestors())
	}
	if !f.Roots[0].IsRoot() || leaf.IsRoot() {
		t.Fatal("IsRoot mismatch")
	}
}

func TestCloneIsDeep(t *testing.T) {
	f := sample()
	c := f.Clone()
	if !Equal(f, c) {
		t.Fatal("clone differs from original")
	}
	c.Roots[0].Children[0].Name = "Changed"
	if f.Roots[0].Children[0].Name != "Arrhythmia" {
		t.Fatal("clone shares nodes with original")
	}
	if c.Roots[0].Children[0].Parent != c.Roots[0] {
		t.Fatal("clone parent links point at original")
	}
	if Equal(f, c) {
		t.Fatal("expected forests to differ after rename")
	}
}

func TestValidateAcceptsSample(t *testing.T) {
	if err := Validate(sample()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := Validate(nil); err != nil {
		t.Fatalf("Validate(nil): %v", err)
	}
}

func TestValidateReportsViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Forest)
		reason string
	}{
		{
			name: "duplicate siblings",
			mutate: func(f *Forest) {
				f.Roots[0].AddChild(NewNode("arrhythmia!", OriginSecondary))
			},
			reason: "duplicates",
		},
		{
			name: "duplicate roots",
			mutate: func(f *Forest) {
				f.AddRoot(NewNode("CARDIOLOGY", OriginSecondary))
			},
			reason: "duplicates",
		},
		{
			name: "bad level",
			mutate: func(f *Forest) {
				f.Roots[0].Children[0].Level = 4
			},
			reason: "level 4 under parent level 0",
		},
		{
			name: "broken parent",
			mutate: func(f *Forest) {
				f.Roots[0].Children[1].Parent = f.Roots[1]
			},
			reason: "parent reference",
		},
		{
			name: "empty name",
			mutate: func(f *Forest) {
				f.Roots[1].Name = "  "
			},
			reason: "empty name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sample()
			tt.mutate(f)
			err := Validate(f)
			if err == nil {
				t.Fatal("expected violation")
			}
			if !IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Fatalf("error %q missing %q", err.Error(), tt.reason)
			}
		})
	}
}

func TestLevelName(t *testing.T) {
	tests := map[int]string{0: "specialty", 3: "topic", 5: "detail", 6: "level 6", -1: "level -1"}
	for level, want := range tests {
		if got := LevelName(level); got != want {
			t.Errorf("LevelName(%d) = %q, want %q", level, got, want)
		}
	}
}
