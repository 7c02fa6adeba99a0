package outline

import (
	"fmt"
	"log/slog"
	"strings"

	"filtertree/internal/logging"
	"filtertree/internal/services"
	"filtertree/internal/tree"
)

// Stage names the builder in warnings and logs.
const Stage = "outline"

// DefaultMaxDepth covers specialty through detail.
const DefaultMaxDepth = 6

// Record is one entry of the token stream: display text plus a hierarchy
// level already resolved by the caller. Line is the 1-based position in the
// source and only used for diagnostics.
type Record struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
	Line  int    `json:"-"`
}

// Options tune Build.
type Options struct {
	// MaxDepth is the number of levels allowed; deeper records are clamped to
	// the last level and flagged. Zero disables the limit.
	MaxDepth int
	Logger   *slog.Logger
}

// Result is the builder output.
type Result struct {
	Forest   *tree.Forest
	Warnings []services.Warning
	Skipped  int
	Flagged  int
}

// Build converts records into a forest in O(n) time and O(depth) extra space.
func Build(records []Record, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	b := &builder{
		forest: tree.New(),
		logger: logging.NewComponentLogger(logger, Stage),
		max:    opts.MaxDepth,
	}
	for i, rec := range records {
		if rec.Line == 0 {
			rec.Line = i + 1
		}
		b.add(rec)
	}
	return Result{Forest: b.forest, Warnings: b.warnings, Skipped: b.skipped, Flagged: b.flagged}
}

type builder struct {
	forest   *tree.Forest
	stack    []*tree.Node
	logger   *slog.Logger
	max      int
	warnings []services.Warning
	skipped  int
	flagged  int
}

func (b *builder) add(rec Record) {
	text := strings.TrimSpace(rec.Text)
	switch {
	case text == "":
		b.skip(rec, "record has no text")
		return
	case rec.Level < 0:
		b.skip(rec, fmt.Sprintf("record %q has negative level %d", text, rec.Level))
		return
	}

	level := rec.Level
	if b.max > 0 && level > b.max-1 {
		b.warn(services.ErrOutOfOrderLevel, rec, text, fmt.Sprintf("level %d exceeds max depth %d; clamped to %d", level, b.max, b.max-1))
		level = b.max - 1
	}

	if len(b.stack) > level {
		b.stack = b.stack[:level]
	}

	node := tree.NewNode(text, tree.OriginPrimary)
	node.SourceLevel = rec.Level

	switch {
	case level == 0:
		b.forest.AddRoot(node)
	case len(b.stack) == level:
		b.stack[level-1].AddChild(node)
	case len(b.stack) == 0:
		b.forest.AddRoot(node)
		b.flag(node, rec, "no open ancestor; attached as root")
	default:
		parent := b.stack[len(b.stack)-1]
		parent.AddChild(node)
		b.flag(node, rec, fmt.Sprintf("level %d attached under %q at level %d", rec.Level, parent.Name, parent.Level))
	}
	b.stack = append(b.stack, node)
}

func (b *builder) skip(rec Record, message string) {
	b.skipped++
	w := services.NewWarning(services.ErrMalformedInput, Stage, message)
	w.Line = rec.Line
	b.warnings = append(b.warnings, w)
	logging.WarnWithContext(b.logger, "skipped malformed record", "outline_malformed_record",
		logging.Int("record", rec.Line),
		logging.String("reason", message),
		logging.String(logging.FieldImpact, "record omitted from tree"),
	)
}

func (b *builder) flag(node *tree.Node, rec Record, message string) {
	node.OutOfOrder = true
	b.flagged++
	b.warn(services.ErrOutOfOrderLevel, rec, node.Path(), message)
}

func (b *builder) warn(kind error, rec Record, path, message string) {
	w := services.NewWarning(kind, Stage, message)
	w.Line = rec.Line
	w.Path = path
	b.warnings = append(b.warnings, w)
	logging.WarnWithContext(b.logger, "out-of-order level", "outline_out_of_order",
		logging.Int("record", rec.Line),
		logging.Int("source_level", rec.Level),
		logging.String("path", path),
		logging.String("reason", message),
		logging.String(logging.FieldImpact, "node attached one or more levels off"),
	)
}
