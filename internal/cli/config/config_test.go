package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config to be non-nil")
	}

	if cfg.Generate.Output != "tref_gen.go" {
		t.Errorf("expected default output 'tref_gen.go', got %s", cfg.Generate.Output)
	}

	if cfg.Generate.Jobs != 4 {
		t.Errorf("expected default jobs 4, got %d", cfg.Generate.Jobs)
	}

	if cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("expected default debounce 100ms, got %s", cfg.Watch.Debounce)
	}

	if len(cfg.Watch.Ignore) != 3 {
		t.Errorf("expected 3 default ignore patterns, got %v", cfg.Watch.Ignore)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
generate:
  output: reflect_gen.go
  include_tests: true
  jobs: 8
watch:
  debounce: 250ms
  ignore: ["*.bak"]
log:
  level: debug
  format: json
`
	os.WriteFile(filepath.Join(tmpDir, "tref.yml"), []byte(configContent), 0644)

	cfg, err := LoadFrom(tmpDir)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Generate.Output != "reflect_gen.go" {
		t.Errorf("expected output 'reflect_gen.go', got %s", cfg.Generate.Output)
	}

	if !cfg.Generate.IncludeTests {
		t.Error("expected include_tests to be true")
	}

	if cfg.Generate.Jobs != 8 {
		t.Errorf("expected jobs 8, got %d", cfg.Generate.Jobs)
	}

	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %s", cfg.Watch.Debounce)
	}

	if len(cfg.Watch.Ignore) != 1 || cfg.Watch.Ignore[0] != "*.bak" {
		t.Errorf("expected ignore [*.bak], got %v", cfg.Watch.Ignore)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("TREF_GENERATE_JOBS", "2")
	t.Setenv("TREF_LOG_LEVEL", "warn")

	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Generate.Jobs != 2 {
		t.Errorf("expected jobs from environment, got %d", cfg.Generate.Jobs)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected level from environment, got %s", cfg.Log.Level)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"output not go":  "generate:\n  output: gen.txt\n",
		"output in dir":  "generate:\n  output: sub/gen.go\n",
		"output is test": "generate:\n  output: gen_test.go\n",
		"zero jobs":      "generate:\n  jobs: 0\n",
		"bad debounce":   "watch:\n  debounce: 0s\n",
		"bad log format": "log:\n  format: xml\n",
		"malformed yaml": "generate: [\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			os.WriteFile(filepath.Join(tmpDir, "tref.yaml"), []byte(content), 0644)

			if _, err := LoadFrom(tmpDir); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Default()
	cfg.Generate.Jobs = 6
	cfg.Watch.Debounce = time.Second

	path, err := Write(tmpDir, cfg, false)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Base(path) != "tref.yaml" {
		t.Errorf("unexpected path %s", path)
	}

	loaded, err := LoadFrom(tmpDir)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Generate.Jobs != 6 || loaded.Watch.Debounce != time.Second {
		t.Errorf("round trip lost values: %+v", loaded)
	}

	if _, err := Write(tmpDir, cfg, false); err == nil {
		t.Error("expected Write to refuse overwriting")
	}
	if _, err := Write(tmpDir, cfg, true); err != nil {
		t.Errorf("forced Write failed: %v", err)
	}
}

func TestGetProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	os.WriteFile(filepath.Join(tmpDir, "go.mod"), []byte("module example.com/m\n"), 0644)

	subDir := filepath.Join(tmpDir, "src", "deep", "nested")
	os.MkdirAll(subDir, 0755)
	os.Chdir(subDir)

	root, err := GetProjectRoot()
	if err != nil {
		t.Fatalf("expected to find project root, got error: %v", err)
	}

	// On macOS, /tmp is symlinked to /private/tmp, so resolve both paths
	resolvedRoot, _ := filepath.EvalSymlinks(root)
	resolvedTmpDir, _ := filepath.EvalSymlinks(tmpDir)

	if resolvedRoot != resolvedTmpDir {
		t.Errorf("expected project root to be %s, got %s", resolvedTmpDir, resolvedRoot)
	}
}

func TestGetProjectRootNotInProject(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	_, err := GetProjectRoot()
	if err == nil {
		t.Error("expected error when not in a project, got nil")
	}
}
