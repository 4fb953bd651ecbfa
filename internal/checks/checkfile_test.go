package checks

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"repocheck/internal/logging"
	"repocheck/internal/runner"
)

func writeCheckFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write check file: %v", err)
	}
}

func newTestLoader(t *testing.T) *CheckFileLoader {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	return NewCheckFileLoader(logger, t.TempDir())
}

func TestLoadDirParsesValidCheckFile(t *testing.T) {
	dir := t.TempDir()
	writeCheckFile(t, dir, "sql-lint.md", `---
name: sql lint
description: Lint the SQL migration files
class: cpu
blocking: false
command: ["sqlfluff", "lint", "migrations/"]
paths:
  - migrations/
timeout_seconds: 60
---

# SQL lint

Runs sqlfluff over migration files.
`)

	checks, err := newTestLoader(t).LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(checks) != 1 {
		t.Fatalf("expected 1 check, got %d", len(checks))
	}

	check := checks[0]
	if check.Name != "sql_lint" {
		t.Errorf("name should be sanitized to sql_lint, got %q", check.Name)
	}
	if check.Class != runner.ClassCPU {
		t.Errorf("class = %q, want cpu", check.Class)
	}
	if check.Blocking {
		t.Error("blocking: false should be honored")
	}
	if check.Timeout != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", check.Timeout)
	}
	if len(check.Paths) != 1 || check.Paths[0] != "migrations/" {
		t.Errorf("paths not carried over: %v", check.Paths)
	}
}

func TestLoadDirDefaults(t *testing.T) {
	dir := t.TempDir()
	writeCheckFile(t, dir, "minimal.md", `---
name: minimal
description: A minimal check
command: ["true"]
---
`)

	checks, err := newTestLoader(t).LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(checks) != 1 {
		t.Fatalf("expected 1 check, got %d", len(checks))
	}

	check := checks[0]
	if check.Class != runner.ClassIO {
		t.Errorf("default class should be io, got %q", check.Class)
	}
	if !check.Blocking {
		t.Error("checks default to blocking")
	}
}

func TestLoadDirSkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeCheckFile(t, dir, "good.md", `---
name: good
description: Valid check
command: ["true"]
---
`)
	writeCheckFile(t, dir, "no-frontmatter.md", "# Just a readme\n")
	writeCheckFile(t, dir, "no-command.md", `---
name: broken
description: Missing command
---
`)
	writeCheckFile(t, dir, "bad-class.md", `---
name: badclass
description: Unknown class
class: gpu
command: ["true"]
---
`)
	writeCheckFile(t, dir, "notes.txt", "not markdown, ignored by the scanner")

	checks, err := newTestLoader(t).LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(checks) != 1 {
		t.Fatalf("only the valid file should load, got %d checks", len(checks))
	}
	if checks[0].Name != "good" {
		t.Errorf("unexpected check loaded: %q", checks[0].Name)
	}
}

func TestLoadDirMissingDirectory(t *testing.T) {
	checks, err := newTestLoader(t).LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("missing directory should not be an error: %v", err)
	}
	if len(checks) != 0 {
		t.Errorf("expected no checks, got %d", len(checks))
	}
}

func TestLoadDirEmptyPath(t *testing.T) {
	checks, err := newTestLoader(t).LoadDir("")
	if err != nil || checks != nil {
		t.Errorf("empty path should be a no-op, got %v, %v", checks, err)
	}
}

func TestRegistryOverride(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	reg := NewRegistry(logger)

	reg.Add(Check{Name: "lint", Description: "builtin"})
	reg.Add(Check{Name: "lint", Description: "custom override"})

	if reg.Len() != 1 {
		t.Fatalf("duplicate registration should replace, got %d checks", reg.Len())
	}
	check, ok := reg.Get("lint")
	if !ok || check.Description != "custom override" {
		t.Errorf("later registration should win: %+v", check)
	}
}
