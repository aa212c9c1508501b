package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestInitCreatesStarterFiles(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", "--config-dir", dir)
	if err != nil {
		t.Fatalf("init error = %v\n%s", err, out)
	}

	for _, path := range []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "rules", "move.yaml"),
		filepath.Join(dir, "rules", "duplicate.yaml"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing starter file %s: %v", path, err)
		}
	}
}

func TestInitKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := "scan_paths:\n  - /data\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute(t, "init", "--config-dir", dir)
	if err != nil {
		t.Fatalf("init error = %v\n%s", err, out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != custom {
		t.Error("init overwrote an existing config.yaml")
	}
	if !strings.Contains(out, "kept existing") {
		t.Errorf("output = %q", out)
	}
}

func TestValidateReportsRuleCounts(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "init", "--config-dir", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	out, err := execute(t, "validate", "--config-dir", dir)
	if err != nil {
		t.Fatalf("validate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "All rules are valid") {
		t.Errorf("output = %q", out)
	}
}

func TestValidateFailsOnBadRule(t *testing.T) {
	dir := t.TempDir()
	rulesDir := filepath.Join(dir, "rules")
	if err := os.MkdirAll(rulesDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	bad := `rules:
  - name: "broken"
    condition:
      name_pattern: "["
    action:
      tag: {color: red}
`
	if err := os.WriteFile(filepath.Join(rulesDir, "tag.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute(t, "validate", "--config-dir", dir)
	if err == nil {
		t.Fatalf("expected validate to fail, output:\n%s", out)
	}
	if !strings.Contains(out, "Problems") {
		t.Errorf("output = %q", out)
	}
}

// seedRunDirs creates a config dir with one enabled move rule and a source
// file, returning the config dir and the source/destination file paths.
func seedRunDirs(t *testing.T, configExtra string) (string, string, string) {
	t.Helper()
	dir := t.TempDir()
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "sorted")

	if err := os.WriteFile(filepath.Join(src, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	config := "scan_paths:\n  - " + src + "\n" + configExtra
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	rule := `rules:
  - name: "text files"
    condition:
      path: "` + src + `"
      extension: ["txt"]
    action:
      move: "` + dst + `"
      create_if_missing: true
`
	if err := os.MkdirAll(filepath.Join(dir, "rules"), 0o755); err != nil {
		t.Fatalf("mkdir rules: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rules", "move.yaml"), []byte(rule), 0o644); err != nil {
		t.Fatalf("write rule: %v", err)
	}

	return dir, filepath.Join(src, "a.txt"), filepath.Join(dst, "a.txt")
}

func TestRunDefaultsToPreview(t *testing.T) {
	dir, src, dst := seedRunDirs(t, "")

	out, err := execute(t, "run", "--config-dir", dir)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Preview only") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("preview run must not move the source")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("preview run must not create the destination")
	}
}

func TestRunHonorsConfigDryRunFalse(t *testing.T) {
	dir, src, dst := seedRunDirs(t, "dry_run: false\n")

	out, err := execute(t, "run", "--config-dir", dir)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Execution report") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("dry_run: false should execute the plan: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after a live run")
	}
}

func TestRunExecuteFlagOverridesConfig(t *testing.T) {
	dir, src, dst := seedRunDirs(t, "dry_run: true\n")

	out, err := execute(t, "run", "--config-dir", dir, "--execute")
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("--execute should override dry_run: true: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after a live run")
	}
}

func TestRunWithoutEnabledRules(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "init", "--config-dir", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}

	// Starter rules ship disabled, so run has nothing to do
	out, err := execute(t, "run", "--config-dir", dir)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "No enabled rules") {
		t.Errorf("output = %q", out)
	}
}
