package collision

import (
	"fmt"
	"log/slog"
	"strings"

	"filtertree/internal/logging"
	"filtertree/internal/services"
	"filtertree/internal/textutil"
	"filtertree/internal/tree"
)

// Stage names the resolver in warnings and logs.
const Stage = "collision"

const (
	DefaultSeparator        = " - "
	DefaultMaxAncestorDepth = 5
	DefaultMaxSuffix        = 1000
)

// Strategy records how a new name was derived.
type Strategy string

const (
	StrategyParent   Strategy = "parent"
	StrategyAncestor Strategy = "ancestor"
	StrategySuffix   Strategy = "suffix"
)

// Options tune Resolve. Zero values select the defaults above.
type Options struct {
	Separator        string
	MaxAncestorDepth int
	MaxSuffix        int
	Logger           *slog.Logger
}

// Rename is one applied name change.
type Rename struct {
	Path     string   `json:"path"`
	Level    int      `json:"level"`
	Old      string   `json:"old"`
	New      string   `json:"new"`
	Strategy Strategy `json:"strategy"`
}

// Report lists every rename in application order.
type Report struct {
	Groups  int
	Renamed []Rename
}

func (o Options) withDefaults() Options {
	if o.Separator == "" {
		o.Separator = DefaultSeparator
	}
	if o.MaxAncestorDepth <= 0 {
		o.MaxAncestorDepth = DefaultMaxAncestorDepth
	}
	if o.MaxSuffix <= 1 {
		o.MaxSuffix = DefaultMaxSuffix
	}
	return o
}

// Resolve renames colliding nodes in f. Running it again on its own output
// renames nothing. The only error is services.ErrUnresolvableCollision, in
// which case f may be partially renamed.
func Resolve(f *tree.Forest, opts Options) (Report, error) {
	opts = opts.withDefaults()
	r := &resolver{opts: opts, logger: logging.NewComponentLogger(opts.Logger, Stage)}
	for level, nodes := range f.Levels() {
		if err := r.resolveLevel(level, nodes); err != nil {
			return r.report, err
		}
	}
	if n := len(r.report.Renamed); n > 0 {
		r.logger.Info("collisions resolved",
			logging.String(logging.FieldEventType, "collisions_resolved"),
			logging.Int("groups", r.report.Groups),
			logging.Int("renamed", n),
		)
	}
	return r.report, nil
}

type resolver struct {
	opts   Options
	logger *slog.Logger
	report Report
}

// resolveLevel renames duplicates on one level. A group whose members share
// a parent keeps its first member; a group spanning parents renames every
// member, so each one carries its own parent as context.
func (r *resolver) resolveLevel(level int, nodes []*tree.Node) error {
	taken := make(map[string]struct{}, len(nodes))
	groups := make(map[string][]*tree.Node, len(nodes))
	var order []string
	for _, n := range nodes {
		key := n.Key()
		taken[key] = struct{}{}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], n)
	}

	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		r.report.Groups++
		start := 1
		if spansParents(members) {
			start = 0
		}
		for _, n := range members[start:] {
			if err := r.rename(level, n, taken); err != nil {
				return err
			}
		}
	}
	return nil
}

func spansParents(members []*tree.Node) bool {
	first := members[0].Parent
	for _, n := range members[1:] {
		if n.Parent != first {
			return true
		}
	}
	return false
}

func (r *resolver) rename(level int, n *tree.Node, taken map[string]struct{}) error {
	name, strategy, ok := r.candidate(n, taken)
	if !ok {
		err := services.Wrap(services.ErrUnresolvableCollision, Stage, "rename",
			fmt.Sprintf("%q at level %d after %d suffixes", n.Path(), level, r.opts.MaxSuffix), nil)
		logging.ErrorWithContext(r.logger, "collision unresolvable", "collision_unresolvable",
			logging.String("node", n.Path()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "raise collision.max_ancestor_depth or rename the duplicates at the source"),
		)
		return err
	}
	taken[textutil.Normalize(name)] = struct{}{}
	rename := Rename{Path: n.Path(), Level: level, Old: n.Name, New: name, Strategy: strategy}
	n.Name = name
	r.report.Renamed = append(r.report.Renamed, rename)
	attrs := append(logging.DecisionAttrs("collision_rename", string(strategy), "name shared at level"),
		logging.String("old", rename.Old),
		logging.String("new", rename.New),
	)
	r.logger.Debug("node renamed", logging.Args(attrs...)...)
	return nil
}

// candidate walks the rename strategies in order and returns the first name
// whose normalized key is free at this level.
func (r *resolver) candidate(n *tree.Node, taken map[string]struct{}) (string, Strategy, bool) {
	free := func(name string) bool {
		_, used := taken[textutil.Normalize(name)]
		return !used
	}

	ancestors := n.Ancestors()
	labels := make([]string, 0, r.opts.MaxAncestorDepth+1)
	labels = append(labels, n.Name)
	for depth, a := range ancestors {
		if depth >= r.opts.MaxAncestorDepth {
			break
		}
		labels = append([]string{a.Name}, labels...)
		name := strings.Join(labels, r.opts.Separator)
		if free(name) {
			return name, textutil.Ternary(depth == 0, StrategyParent, StrategyAncestor), true
		}
	}

	for i := 2; i <= r.opts.MaxSuffix; i++ {
		name := fmt.Sprintf("%s (%d)", n.Name, i)
		if free(name) {
			return name, StrategySuffix, true
		}
	}
	return "", "", false
}
