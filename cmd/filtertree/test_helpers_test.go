package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filtertree/internal/config"
	"filtertree/internal/testsupport"
)

const outlineFixture = `{"text": "Cardiology", "level": 0}
{"text": "Arrhythmia", "level": 1}
{"text": "AV Block", "level": 2}
{"text": "Nephrology", "level": 0}
`

const curatedFixture = `[
  {"name": "Cardiology", "children": [
    {"name": "Arrhythmia", "children": ["AV Block", "Atrial Flutter"]}
  ]},
  {"name": "Oncology", "children": ["Breast Cancer"]}
]`

type cliTestEnv struct {
	cfg         *config.Config
	configPath  string
	baseDir     string
	outlinePath string
	curatedPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("FILTERTREE_STORE_PATH", "")

	configPath := filepath.Join(homeDir, ".config", "filtertree", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:         cfg,
		configPath:  configPath,
		baseDir:     base,
		outlinePath: testsupport.WriteFile(t, filepath.Join(base, "inputs", "outline.jsonl"), outlineFixture),
		curatedPath: testsupport.WriteFile(t, filepath.Join(base, "inputs", "curated.json"), curatedFixture),
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
store_path = %q

[store]
retry_delay_ms = 1
batch_delay_ms = 0

[logging]
level = "error"
`,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.StorePath,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
