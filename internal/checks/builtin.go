package checks

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"repocheck/internal/logging"
	"repocheck/internal/runner"
)

// Registry holds the checks known for one repository, in registration order.
type Registry struct {
	logger *logging.AppLogger
	checks []Check
	byName map[string]int
}

// NewRegistry creates an empty check registry.
func NewRegistry(logger *logging.AppLogger) *Registry {
	return &Registry{
		logger: logger,
		byName: make(map[string]int),
	}
}

// Add registers a check. A duplicate name replaces the earlier registration
// so custom check files can override builtins.
func (r *Registry) Add(check Check) {
	if idx, ok := r.byName[check.Name]; ok {
		r.logger.Debug("Replacing check registration", "name", check.Name)
		r.checks[idx] = check
		return
	}
	r.byName[check.Name] = len(r.checks)
	r.checks = append(r.checks, check)
}

// Get returns the named check.
func (r *Registry) Get(name string) (Check, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Check{}, false
	}
	return r.checks[idx], true
}

// All returns the registered checks in registration order.
func (r *Registry) All() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	return len(r.checks)
}

// Default commands for the builtin tool-backed checks. The config file can
// override any of them per repository.
var defaultCommands = map[string][]string{
	"lint":      {"npx", "eslint", "."},
	"typecheck": {"npx", "tsc", "--noEmit"},
	"format":    {"npx", "prettier", "--check", "."},
}

const (
	commandTimeout    = 5 * time.Minute
	largeFileLimit    = 5 * 1024 * 1024 // 5MB
	maxTodoFindings   = 50
	maxScanFileSize   = 1 << 20 // skip files over 1MB in content scans
	scanIgnoredPrefix = "."
)

// RegisterBuiltins populates the registry with the standard workflow checks
// for the repository at repoRoot. commands overrides the default argv for
// tool-backed checks; changeset may be nil when git information is
// unavailable.
func RegisterBuiltins(r *Registry, repoRoot string, commands map[string][]string, changeset *ChangeSet) {
	for _, name := range []string{"lint", "typecheck", "format"} {
		argv := defaultCommands[name]
		if override, ok := commands[name]; ok && len(override) > 0 {
			argv = override
		}
		check := CommandCheck(name, builtinDescription(name), runner.ClassCPU, true, commandTimeout, argv, repoRoot)
		r.Add(check)
	}

	r.Add(Check{
		Name:        "todo_scan",
		Description: "Scan source files for TODO and FIXME markers",
		Class:       runner.ClassIO,
		Blocking:    false,
		Run: func(ctx context.Context) (Outcome, error) {
			return scanTodos(ctx, repoRoot)
		},
	})

	r.Add(Check{
		Name:        "commit_message",
		Description: "Validate the HEAD commit message against the conventional format",
		Class:       runner.ClassIO,
		Blocking:    true,
		Run: func(ctx context.Context) (Outcome, error) {
			if changeset == nil {
				return Outcome{OK: true, Skipped: true, Detail: "no git information"}, nil
			}
			return validateCommitMessage(changeset.HeadMessage), nil
		},
	})

	r.Add(Check{
		Name:        "large_files",
		Description: "Flag changed files larger than 5MB",
		Class:       runner.ClassIO,
		Blocking:    false,
		Run: func(ctx context.Context) (Outcome, error) {
			if changeset == nil {
				return Outcome{OK: true, Skipped: true, Detail: "no git information"}, nil
			}
			return findLargeFiles(repoRoot, changeset.Files), nil
		},
	})
}

func builtinDescription(name string) string {
	switch name {
	case "lint":
		return "Run the repository linter over the whole tree"
	case "typecheck":
		return "Run the type checker without emitting output"
	case "format":
		return "Verify formatting without rewriting files"
	default:
		return name
	}
}

var todoPattern = regexp.MustCompile(`\b(TODO|FIXME)\b`)

// sourceExtensions limits the todo scan to text files worth reporting on.
var sourceExtensions = map[string]bool{
	".go": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".rb": true, ".java": true, ".sql": true, ".sh": true,
	".css": true, ".scss": true, ".html": true, ".vue": true,
}

// scanTodos walks the repository collecting TODO/FIXME markers. The check is
// advisory: findings fail the outcome but only surface as warnings.
func scanTodos(ctx context.Context, root string) (Outcome, error) {
	var findings []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, scanIgnoredPrefix) || name == "node_modules" || name == "vendor" || name == "dist") {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		if info, err := d.Info(); err != nil || info.Size() > maxScanFileSize {
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		found, err := grepFile(path, rel)
		if err != nil {
			return nil
		}
		findings = append(findings, found...)
		if len(findings) >= maxTodoFindings {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("todo scan failed: %w", err)
	}

	if len(findings) == 0 {
		return Outcome{OK: true}, nil
	}
	return Outcome{
		OK:     false,
		Detail: fmt.Sprintf("%d TODO/FIXME markers: %s", len(findings), strings.Join(findings, "; ")),
	}, nil
}

func grepFile(path, rel string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var found []string
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if todoPattern.MatchString(scanner.Text()) {
			found = append(found, fmt.Sprintf("%s:%d", rel, lineNo))
		}
	}
	return found, scanner.Err()
}

// conventionalCommitPattern accepts the usual type(scope): subject shape.
var conventionalCommitPattern = regexp.MustCompile(
	`^(feat|fix|docs|style|refactor|perf|test|build|ci|chore|revert)(\([\w./-]+\))?!?: .+`)

const maxCommitSubjectLength = 100

func validateCommitMessage(message string) Outcome {
	subject := strings.TrimSpace(message)
	if idx := strings.IndexByte(subject, '\n'); idx >= 0 {
		subject = subject[:idx]
	}

	if subject == "" {
		return Outcome{OK: false, Detail: "commit message is empty"}
	}
	if len(subject) > maxCommitSubjectLength {
		return Outcome{OK: false, Detail: fmt.Sprintf("commit subject exceeds %d characters", maxCommitSubjectLength)}
	}
	if !conventionalCommitPattern.MatchString(subject) {
		return Outcome{OK: false, Detail: fmt.Sprintf("commit subject %q does not match type(scope): subject", subject)}
	}
	return Outcome{OK: true}
}

func findLargeFiles(root string, files []string) Outcome {
	var large []string
	for _, rel := range files {
		info, err := os.Stat(filepath.Join(root, rel))
		if err != nil || info.IsDir() {
			continue
		}
		if info.Size() > largeFileLimit {
			large = append(large, fmt.Sprintf("%s (%d bytes)", rel, info.Size()))
		}
	}

	if len(large) == 0 {
		return Outcome{OK: true}
	}
	return Outcome{OK: false, Detail: "files over size limit: " + strings.Join(large, ", ")}
}
