package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"filtertree/internal/config"
	"filtertree/internal/fileutil"
	"filtertree/internal/identity"
	"filtertree/internal/pipeline"
	"filtertree/internal/source"
)

type inputFlags struct {
	outline string
	curated string
}

func (f inputFlags) load() (pipeline.Input, error) {
	var in pipeline.Input
	outlinePath := strings.TrimSpace(f.outline)
	if outlinePath == "" {
		return in, errors.New("--outline is required")
	}
	path, err := config.ExpandPath(outlinePath)
	if err != nil {
		return in, err
	}
	records, warnings, err := source.ReadTokensFile(path)
	if err != nil {
		return in, err
	}
	in.Records = records
	in.Warnings = append(in.Warnings, warnings...)

	if curated := strings.TrimSpace(f.curated); curated != "" {
		path, err := config.ExpandPath(curated)
		if err != nil {
			return in, err
		}
		entries, warnings, err := source.ReadHierarchyFile(path)
		if err != nil {
			return in, err
		}
		in.Secondary = entries
		in.Warnings = append(in.Warnings, warnings...)
	}
	return in, nil
}

// runPipeline loads the inputs and runs every stage with the configured options.
func (c *commandContext) runPipeline(ctx context.Context, flags inputFlags) (pipeline.Result, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return pipeline.Result{}, err
	}
	in, err := flags.load()
	if err != nil {
		return pipeline.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.Run(in, pipeline.OptionsFromConfig(cfg, c.loggerValue()))
}

func readExport(path string) ([]identity.Record, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	var records []identity.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse export %s: %w", expanded, err)
	}
	return records, nil
}

func writeExport(path string, records []identity.Record) error {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return err
	}
	if err := fileutil.WriteJSONAtomic(expanded, nonNilRecords(records), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
