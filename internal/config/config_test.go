package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"filtertree/internal/config"
	"filtertree/internal/services"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("FILTERTREE_STORE_PATH", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "filtertree")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.StorePath != filepath.Join(wantData, "filtertree.db") {
		t.Fatalf("unexpected store path: %q", cfg.Paths.StorePath)
	}
	if cfg.Match.Threshold != 0.8 || cfg.Match.FindThreshold != 0.7 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Match)
	}
	if cfg.Outline.MaxDepth != 6 {
		t.Fatalf("unexpected max depth: %d", cfg.Outline.MaxDepth)
	}
	if cfg.Collision.Separator != " - " || cfg.Identity.Separator != "_" {
		t.Fatalf("unexpected separators: %q %q", cfg.Collision.Separator, cfg.Identity.Separator)
	}
	if cfg.Store.BatchSize != config.Default().Store.BatchSize {
		t.Fatalf("unexpected batch size: %d", cfg.Store.BatchSize)
	}
}

func TestLoadReadsFileAndAppliesEnvStorePath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	storePath := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("FILTERTREE_STORE_PATH", storePath)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `[match]
threshold = 0.9

[collision]
separator = " / "

[store]
batch_size = 0

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing config at %q, got %q exists=%v", configPath, resolved, exists)
	}
	if cfg.Match.Threshold != 0.9 {
		t.Fatalf("threshold = %v", cfg.Match.Threshold)
	}
	if cfg.Match.FindThreshold != 0.7 {
		t.Fatalf("find threshold should keep default, got %v", cfg.Match.FindThreshold)
	}
	if cfg.Collision.Separator != " / " {
		t.Fatalf("separator = %q", cfg.Collision.Separator)
	}
	if cfg.Store.BatchSize != 400 {
		t.Fatalf("batch size should fall back to default, got %d", cfg.Store.BatchSize)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.Paths.StorePath != storePath {
		t.Fatalf("store path = %q, want env %q", cfg.Paths.StorePath, storePath)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[match]\nthreshhold = 0.5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "filtertree") {
		t.Fatalf("expected data dir to contain filtertree, got %q", cfg.Paths.DataDir)
	}
	if cfg.Match.Threshold != config.Default().Match.Threshold {
		t.Fatalf("sample threshold %v differs from default", cfg.Match.Threshold)
	}

	t.Setenv("HOME", t.TempDir())
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		key    string
	}{
		{"zero threshold", func(c *config.Config) { c.Match.Threshold = 0 }, "match.threshold"},
		{"threshold above one", func(c *config.Config) { c.Match.Threshold = 1.2 }, "match.threshold"},
		{"find threshold", func(c *config.Config) { c.Match.FindThreshold = -1 }, "match.find_threshold"},
		{"negative depth", func(c *config.Config) { c.Outline.MaxDepth = -1 }, "outline.max_depth"},
		{"empty collision separator", func(c *config.Config) { c.Collision.Separator = "" }, "collision.separator"},
		{"ancestor depth", func(c *config.Config) { c.Collision.MaxAncestorDepth = 0 }, "collision.max_ancestor_depth"},
		{"empty identity separator", func(c *config.Config) { c.Identity.Separator = "" }, "identity.separator"},
		{"segment length", func(c *config.Config) { c.Identity.SegmentMaxLen = -5 }, "identity.segment_max_len"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Fatalf("error %q does not name %s", err, tt.key)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestEnsureDirectoriesCreatesStoreParent(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StorePath = filepath.Join(base, "db", "tree.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.StorePath)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if cfg.LockPath() != cfg.Paths.StorePath+".lock" {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
}
