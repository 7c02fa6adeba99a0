package merge

import (
	"fmt"
	"log/slog"
	"strconv"

	"filtertree/internal/logging"
	"filtertree/internal/services"
	"filtertree/internal/source"
	"filtertree/internal/textutil"
	"filtertree/internal/tree"
)

// Stage names the merger in warnings and logs.
const Stage = "merge"

// Options tune Merge.
type Options struct {
	// Threshold is the minimum similarity ratio for a match. Zero selects
	// textutil.SubtreeThreshold.
	Threshold float64
	Logger    *slog.Logger
}

// Report summarizes a merge. Counts are in entries: Matched counts entries
// merged into an existing node, Inserted counts entries that became new
// nodes.
type Report struct {
	Matched  int
	Inserted int
	Skipped  int
	Warnings []services.Warning
}

// Merge mutates primary in place, adding what entries contribute.
func Merge(primary *tree.Forest, entries []source.Entry, opts Options) Report {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = textutil.SubtreeThreshold
	}
	m := &merger{
		forest:    primary,
		threshold: threshold,
		logger:    logging.NewComponentLogger(opts.Logger, Stage),
	}
	m.mergeInto(nil, entries)
	m.logger.Info("merge complete",
		logging.String(logging.FieldEventType, "merge_complete"),
		logging.Int("matched", m.report.Matched),
		logging.Int("inserted", m.report.Inserted),
		logging.Int("skipped", m.report.Skipped),
	)
	return m.report
}

type merger struct {
	forest    *tree.Forest
	threshold float64
	logger    *slog.Logger
	report    Report
}

func (m *merger) siblings(parent *tree.Node) []*tree.Node {
	if parent == nil {
		return m.forest.Roots
	}
	return parent.Children
}

func (m *merger) mergeInto(parent *tree.Node, entries []source.Entry) {
	for _, entry := range entries {
		if !m.usable(parent, entry) {
			continue
		}
		counterpart, score := m.counterpart(entry.Name, m.siblings(parent))
		if counterpart != nil {
			m.report.Matched++
			attrs := append(logging.DecisionAttrs("merge_match", "matched", "similarity "+strconv.FormatFloat(score, 'f', 2, 64)),
				logging.String("entry", entry.Name),
				logging.String("node_path", counterpart.Path()),
			)
			m.logger.Debug("entry matched", logging.Args(attrs...)...)
			m.mergeInto(counterpart, entry.Children)
			continue
		}
		node := m.insert(parent, entry)
		attrs := append(logging.DecisionAttrs("merge_match", "inserted", "no sibling above threshold"),
			logging.String("node_path", node.Path()),
			logging.Float64("best_score", score),
		)
		m.logger.Debug("entry inserted", logging.Args(attrs...)...)
	}
}

// insert adds entry under parent. Its children go through mergeInto against
// the fresh node, so a curated branch that repeats a name collapses onto the
// first copy instead of landing as duplicate siblings.
func (m *merger) insert(parent *tree.Node, entry source.Entry) *tree.Node {
	node := tree.NewNode(entry.Name, tree.OriginSecondary)
	if parent == nil {
		m.forest.AddRoot(node)
	} else {
		parent.AddChild(node)
	}
	node.SourceLevel = node.Level
	m.report.Inserted++
	m.mergeInto(node, entry.Children)
	return node
}

// counterpart picks the sibling an entry merges into: the first exact
// normalized match, else the best-scoring primary node at or above the
// threshold, else the earliest secondary node at or above it. Inserted nodes
// are secondary and always appended, so merging the same entries again picks
// the same counterpart. With no match the top score is returned for logs.
func (m *merger) counterpart(name string, candidates []*tree.Node) (*tree.Node, float64) {
	key := textutil.Normalize(name)
	var (
		primary, secondary           *tree.Node
		primaryScore, secondaryScore float64
		top                          float64
	)
	for _, c := range candidates {
		ck := c.Key()
		if ck == key {
			return c, 1
		}
		score := textutil.RatioKeys(key, ck)
		top = max(top, score)
		if score < m.threshold {
			continue
		}
		if c.Origin == tree.OriginSecondary {
			if secondary == nil {
				secondary, secondaryScore = c, score
			}
			continue
		}
		if primary == nil || score > primaryScore {
			primary, primaryScore = c, score
		}
	}
	switch {
	case primary != nil:
		return primary, primaryScore
	case secondary != nil:
		return secondary, secondaryScore
	}
	return nil, top
}

func (m *merger) usable(parent *tree.Node, entry source.Entry) bool {
	if textutil.Normalize(entry.Name) != "" {
		return true
	}
	skipped := entry.Count()
	m.report.Skipped += skipped
	where := "(root)"
	if parent != nil {
		where = parent.Path()
	}
	w := services.NewWarning(services.ErrMalformedInput, Stage,
		fmt.Sprintf("entry %q has an empty normalized name; %d entries skipped", entry.Name, skipped))
	w.Path = where
	m.report.Warnings = append(m.report.Warnings, w)
	logging.WarnWithContext(m.logger, "skipped secondary entry", "merge_entry_skipped",
		logging.String("parent", where),
		logging.String("entry", entry.Name),
		logging.Int("skipped", skipped),
		logging.String(logging.FieldImpact, "entry and its children left out of the merged tree"),
	)
	return false
}

func nodeName(n *tree.Node) string {
	return n.Name
}
