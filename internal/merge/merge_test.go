package merge

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"filtertree/internal/outline"
	"filtertree/internal/services"
	"filtertree/internal/source"
	"filtertree/internal/tree"
)

func cardiologyForest(t *testing.T) *tree.Forest {
	t.Helper()
	res := outline.Build([]outline.Record{
		{Text: "Cardiology", Level: 0},
		{Text: "Arrhythmia", Level: 1},
		{Text: "AV Block", Level: 2},
	}, outline.Options{})
	return res.Forest
}

func readEntries(t *testing.T, doc string) []source.Entry {
	t.Helper()
	entries, warnings, err := source.ReadHierarchy(strings.NewReader(doc), source.FormatJSON)
	if err != nil {
		t.Fatalf("ReadHierarchy: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected read warnings: %v", warnings)
	}
	return entries
}

func TestMergeMatchingSecondaryInsertsNothing(t *testing.T) {
	forest := cardiologyForest(t)
	entries := readEntries(t, `[{"especialidade":"Cardiology","subespecialidades":[{"nome":"Arrhythmia","assuntos":["AV Block"]}]}]`)

	report := Merge(forest, entries, Options{})
	if report.Inserted != 0 {
		t.Fatalf("inserted = %d, want 0", report.Inserted)
	}
	if report.Matched != 3 {
		t.Fatalf("matched = %d, want 3", report.Matched)
	}
	if forest.Len() != 3 {
		t.Fatalf("Len = %d, want 3", forest.Len())
	}
}

func TestMergeInsertsUnmatchedSubtrees(t *testing.T) {
	forest := cardiologyForest(t)
	entries := []source.Entry{
		source.Branch("cardiologia",
			source.Branch("Arrhythmias",
				source.Leaf("AV block"),
				source.Leaf("Atrial Fibrillation"),
			),
			source.Branch("Heart Failure",
				source.Leaf("Acute"),
				source.Leaf("Chronic"),
			),
		),
		source.Branch("Pulmonology", source.Leaf("Asthma")),
	}

	report := Merge(forest, entries, Options{})
	if report.Matched != 3 {
		t.Fatalf("matched = %d, want 3", report.Matched)
	}
	if report.Inserted != 6 {
		t.Fatalf("inserted = %d, want 6", report.Inserted)
	}

	cardio := forest.Roots[0]
	if cardio.Name != "Cardiology" {
		t.Fatalf("primary name was replaced: %q", cardio.Name)
	}
	arr := cardio.Children[0]
	if len(arr.Children) != 2 || arr.Children[1].Name != "Atrial Fibrillation" {
		t.Fatalf("unexpected arrhythmia children: %v", arr.Children)
	}
	if arr.Children[1].Origin != tree.OriginSecondary || arr.Children[1].Level != 2 {
		t.Fatalf("inserted node = %+v", arr.Children[1])
	}
	hf := cardio.Children[1]
	if hf.Name != "Heart Failure" || len(hf.Children) != 2 || hf.Children[0].Level != 2 {
		t.Fatalf("unexpected heart failure subtree: %+v", hf)
	}
	if len(forest.Roots) != 2 || forest.Roots[1].Name != "Pulmonology" || forest.Roots[1].Level != 0 {
		t.Fatalf("expected new root Pulmonology, got %v", forest.Roots)
	}
	if err := tree.Validate(forest); err != nil {
		t.Fatalf("merged forest invalid: %v", err)
	}
}

func TestMergeScopesMatchingToParent(t *testing.T) {
	res := outline.Build([]outline.Record{
		{Text: "Pulmonology", Level: 0},
		{Text: "Asthma", Level: 1},
		{Text: "Introduction", Level: 2},
		{Text: "Cardiology", Level: 0},
	}, outline.Options{})
	forest := res.Forest

	entries := []source.Entry{
		source.Branch("Cardiology", source.Leaf("Introduction")),
	}
	report := Merge(forest, entries, Options{})
	if report.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1", report.Inserted)
	}
	cardio := forest.Roots[1]
	if len(cardio.Children) != 1 || cardio.Children[0].Name != "Introduction" {
		t.Fatalf("Introduction should be inserted under Cardiology, got %v", cardio.Children)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	forest := cardiologyForest(t)
	entries := []source.Entry{
		source.Branch("Cardiology",
			source.Branch("Valvular Disease", source.Leaf("Mitral Stenosis"), source.Leaf("Aortic Stenosis")),
		),
		source.Branch("Nephrology", source.Leaf("Glomerulonephritis")),
	}

	first := Merge(forest, entries, Options{})
	if first.Inserted == 0 {
		t.Fatal("expected first merge to insert nodes")
	}
	snapshot := forest.Clone()

	second := Merge(forest, entries, Options{})
	if second.Inserted != 0 {
		t.Fatalf("second merge inserted %d nodes", second.Inserted)
	}
	if !tree.Equal(snapshot, forest) {
		t.Fatal("second merge changed the forest")
	}
}

func TestMergeSkipsEmptyNames(t *testing.T) {
	forest := cardiologyForest(t)
	entries := []source.Entry{
		source.Branch("Cardiology",
			source.Branch("!!!", source.Leaf("Hidden")),
			source.Leaf("Hypertension"),
		),
	}
	report := Merge(forest, entries, Options{})
	if report.Skipped != 2 {
		t.Fatalf("skipped = %d, want 2", report.Skipped)
	}
	if report.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1", report.Inserted)
	}
	if len(report.Warnings) != 1 || !errors.Is(report.Warnings[0].Kind, services.ErrMalformedInput) {
		t.Fatalf("unexpected warnings: %v", report.Warnings)
	}
	if report.Warnings[0].Path != "Cardiology" {
		t.Fatalf("warning path = %q", report.Warnings[0].Path)
	}
}

func TestMergeThresholdOverride(t *testing.T) {
	forest := cardiologyForest(t)
	// "Cardiologia" vs "Cardiology" scores 0.82: a match at 0.8, not at 0.9.
	entries := []source.Entry{source.Leaf("Cardiologia")}

	strict := forest.Clone()
	if report := Merge(strict, entries, Options{Threshold: 0.9}); report.Inserted != 1 {
		t.Fatalf("strict merge inserted %d, want 1", report.Inserted)
	}
	if report := Merge(forest, entries, Options{}); report.Inserted != 0 {
		t.Fatalf("default merge inserted %d, want 0", report.Inserted)
	}
}

func TestMergeIntoEmptyForest(t *testing.T) {
	forest := tree.New()
	report := Merge(forest, []source.Entry{source.Branch("A", source.Leaf("B"))}, Options{})
	if report.Inserted != 2 || forest.Len() != 2 {
		t.Fatalf("inserted = %d len = %d", report.Inserted, forest.Len())
	}
	if forest.Roots[0].Children[0].Level != 1 {
		t.Fatalf("child level = %d", forest.Roots[0].Children[0].Level)
	}
}

func TestMergeCollapsesRepeatedNamesInNewBranch(t *testing.T) {
	forest := tree.New()
	entries := []source.Entry{
		source.Branch("A", source.Branch("X"), source.Branch("X", source.Leaf("X"), source.Leaf("X"))),
	}

	first := Merge(forest, entries, Options{})
	if first.Inserted != 3 || first.Matched != 2 {
		t.Fatalf("first merge inserted %d matched %d, want 3 and 2", first.Inserted, first.Matched)
	}
	a := forest.Roots[0]
	if len(a.Children) != 1 {
		t.Fatalf("A children = %d, want 1", len(a.Children))
	}
	x := a.Children[0]
	if len(x.Children) != 1 || x.Children[0].Name != "X" || x.Children[0].Level != 2 {
		t.Fatalf("unexpected X subtree: %+v", x.Children)
	}

	if second := Merge(forest, entries, Options{}); second.Inserted != 0 {
		t.Fatalf("second merge inserted %d nodes", second.Inserted)
	}
}

func TestMergePrefersPrimaryOverLaterInsertedSibling(t *testing.T) {
	forest := outline.Build([]outline.Record{{Text: "Cardiologia", Level: 0}}, outline.Options{}).Forest
	entries := []source.Entry{
		source.Branch("Cardiology", source.Leaf("Arrhythmia")),
		source.Leaf("Cardiology 2"),
	}

	first := Merge(forest, entries, Options{})
	if first.Inserted != 2 {
		t.Fatalf("first merge inserted %d, want 2", first.Inserted)
	}
	snapshot := forest.Clone()

	second := Merge(forest, entries, Options{})
	if second.Inserted != 0 {
		t.Fatalf("second merge inserted %d nodes", second.Inserted)
	}
	if !tree.Equal(snapshot, forest) {
		t.Fatal("second merge changed the forest")
	}
	if added := forest.Roots[1]; added.Name != "Cardiology 2" || len(added.Children) != 0 {
		t.Fatalf("unexpected second root: %+v", added)
	}
}

func TestMergePrefersExactMatch(t *testing.T) {
	forest := outline.Build([]outline.Record{
		{Text: "Cardiologia", Level: 0},
		{Text: "Cardiology", Level: 0},
	}, outline.Options{}).Forest
	Merge(forest, []source.Entry{source.Branch("cardiology", source.Leaf("Arrhythmia"))}, Options{})
	if len(forest.Roots[0].Children) != 0 || len(forest.Roots[1].Children) != 1 {
		t.Fatal("entry should merge into the exact match")
	}
}

// mergePool mixes exact repeats with names that sit near the 0.8 threshold.
var mergePool = []string{
	"Cardiology", "Cardiologia", "Cardiology 2", "cardiology!",
	"Arrhythmia", "Arrhythmias", "AV Block", "Intro", "X",
}

func randomEntries(rng *rand.Rand, depth int) []source.Entry {
	n := rng.Intn(4)
	out := make([]source.Entry, 0, n)
	for i := 0; i < n; i++ {
		name := mergePool[rng.Intn(len(mergePool))]
		if depth >= 3 || rng.Intn(3) == 0 {
			out = append(out, source.Leaf(name))
			continue
		}
		out = append(out, source.Branch(name, randomEntries(rng, depth+1)...))
	}
	return out
}

func randomPrimary(rng *rand.Rand) *tree.Forest {
	n := rng.Intn(12)
	records := make([]outline.Record, 0, n)
	last := -1
	for i := 0; i < n; i++ {
		level := rng.Intn(min(last+2, 3))
		records = append(records, outline.Record{Text: mergePool[rng.Intn(len(mergePool))], Level: level})
		last = level
	}
	return outline.Build(records, outline.Options{}).Forest
}

func TestMergeTwiceInsertsNothing(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for iteration := 0; iteration < 500; iteration++ {
		forest := randomPrimary(rng)
		entries := randomEntries(rng, 0)

		Merge(forest, entries, Options{})
		snapshot := forest.Clone()

		again := Merge(forest, entries, Options{})
		if again.Inserted != 0 {
			t.Fatalf("iteration %d: second merge inserted %d nodes", iteration, again.Inserted)
		}
		if !tree.Equal(snapshot, forest) {
			t.Fatalf("iteration %d: second merge changed the forest", iteration)
		}
		forest.Walk(func(n *tree.Node) bool {
			if n.Parent != nil && n.Level != n.Parent.Level+1 {
				t.Fatalf("iteration %d: level %d under %d", iteration, n.Level, n.Parent.Level)
			}
			return true
		})
	}
}
