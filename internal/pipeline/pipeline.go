package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"filtertree/internal/collision"
	"filtertree/internal/config"
	"filtertree/internal/identity"
	"filtertree/internal/logging"
	"filtertree/internal/merge"
	"filtertree/internal/outline"
	"filtertree/internal/services"
	"filtertree/internal/source"
	"filtertree/internal/tree"
)

// Stage names the pipeline in errors and logs.
const Stage = "pipeline"

// Options configures every stage of a run.
type Options struct {
	MaxDepth  int
	Threshold float64
	Collision collision.Options
	Identity  identity.Options
	Logger    *slog.Logger
}

// OptionsFromConfig maps configuration onto stage options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		MaxDepth:  cfg.Outline.MaxDepth,
		Threshold: cfg.Match.Threshold,
		Collision: collision.Options{
			Separator:        cfg.Collision.Separator,
			MaxAncestorDepth: cfg.Collision.MaxAncestorDepth,
		},
		Identity: identity.Options{
			Separator:     cfg.Identity.Separator,
			SegmentMaxLen: cfg.Identity.SegmentMaxLen,
		},
		Logger: logger,
	}
}

// Input holds decoded artifacts. Warnings carries problems found while
// decoding so the report lists them with the stage warnings.
type Input struct {
	Records   []outline.Record
	Secondary []source.Entry
	Warnings  []services.Warning
}

// Report summarizes a run.
type Report struct {
	Records     int                `json:"records"`
	Skipped     int                `json:"skipped"`
	Flagged     int                `json:"flagged"`
	Matched     int                `json:"matched"`
	Inserted    int                `json:"inserted"`
	Renamed     []collision.Rename `json:"renamed"`
	LevelCounts []int              `json:"level_counts"`
	Total       int                `json:"total"`
	Warnings    []services.Warning `json:"warnings"`
	Duration    time.Duration      `json:"duration"`
}

// Result is the outcome of a successful run.
type Result struct {
	Forest  *tree.Forest
	Records []identity.Record
	Report  Report
}

// Run executes every stage. Per-record problems become warnings; a failed
// collision, identifier, or invariant check aborts the run before any
// records are returned.
func Run(in Input, opts Options) (Result, error) {
	started := time.Now()
	logger := logging.NewComponentLogger(opts.Logger, Stage)
	report := Report{Records: len(in.Records)}
	report.Warnings = append(report.Warnings, in.Warnings...)

	built := outline.Build(in.Records, outline.Options{MaxDepth: opts.MaxDepth, Logger: opts.Logger})
	forest := built.Forest
	report.Skipped = built.Skipped
	report.Flagged = built.Flagged
	report.Warnings = append(report.Warnings, built.Warnings...)

	if len(in.Secondary) > 0 {
		merged := merge.Merge(forest, in.Secondary, merge.Options{Threshold: opts.Threshold, Logger: opts.Logger})
		report.Matched = merged.Matched
		report.Inserted = merged.Inserted
		report.Warnings = append(report.Warnings, merged.Warnings...)
	}

	colOpts := opts.Collision
	colOpts.Logger = opts.Logger
	resolved, err := collision.Resolve(forest, colOpts)
	if err != nil {
		return Result{}, err
	}
	report.Renamed = resolved.Renamed

	if err := tree.Validate(forest); err != nil {
		return Result{}, services.Wrap(services.ErrInvariant, Stage, "validate", "forest failed validation", err)
	}

	records, err := identity.Assign(forest, opts.Identity)
	if err != nil {
		return Result{}, err
	}
	if err := identity.CheckUnique(records); err != nil {
		return Result{}, err
	}

	report.LevelCounts = forest.LevelCounts()
	report.Total = len(records)
	report.Duration = time.Since(started)

	logger.Info("pipeline complete",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.Int("nodes", report.Total),
		logging.Int("inserted", report.Inserted),
		logging.Int("renamed", len(report.Renamed)),
		logging.Int("warnings", len(report.Warnings)),
		logging.Duration("duration", report.Duration),
	)
	return Result{Forest: forest, Records: records, Report: report}, nil
}

// Summary renders a one-line description of the report.
func (r Report) Summary() string {
	return fmt.Sprintf("%d nodes (%d from secondary), %d renamed, %d flagged, %d skipped, %d warnings",
		r.Total, r.Inserted, len(r.Renamed), r.Flagged, r.Skipped, len(r.Warnings))
}
