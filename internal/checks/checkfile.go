package checks

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"repocheck/internal/logging"
	"repocheck/internal/runner"
	"repocheck/pkg/fileops"

	"github.com/adrg/frontmatter"
)

// maxCheckFileSize caps how large a custom check definition may be.
const maxCheckFileSize = 1 * 1024 * 1024 // 1MB

// CheckFrontmatter is the YAML frontmatter expected in a custom check file.
// The markdown body below the frontmatter is free-form documentation for the
// check and is not interpreted.
type CheckFrontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Class       string   `yaml:"class,omitempty"`
	Blocking    *bool    `yaml:"blocking,omitempty"`
	Command     []string `yaml:"command"`
	Paths       []string `yaml:"paths,omitempty"`
	TimeoutSec  int      `yaml:"timeout_seconds,omitempty"`
}

// CheckFileLoader discovers and parses custom check definitions from a
// directory of markdown files.
type CheckFileLoader struct {
	logger      *logging.AppLogger
	repoRoot    string
	maxFileSize int64
}

// NewCheckFileLoader creates a loader for custom checks run against repoRoot.
func NewCheckFileLoader(logger *logging.AppLogger, repoRoot string) *CheckFileLoader {
	return &CheckFileLoader{
		logger:      logger,
		repoRoot:    repoRoot,
		maxFileSize: maxCheckFileSize,
	}
}

// LoadDir scans dir for markdown check definitions and returns the checks it
// could parse. Files without valid frontmatter are skipped with a debug log.
// A missing directory is not an error; it simply yields no custom checks.
func (l *CheckFileLoader) LoadDir(dir string) ([]Check, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		l.logger.Debug("Custom check directory does not exist", "dir", dir)
		return nil, nil
	}

	paths, err := fileops.ScanMarkdownFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan check directory: %w", err)
	}

	var checks []Check
	var skipped int
	for _, path := range paths {
		check, err := l.parseCheckFile(path)
		if err != nil {
			l.logger.Debug("Skipping check file", "path", path, "reason", err)
			skipped++
			continue
		}
		checks = append(checks, check)
	}

	l.logger.Info("Custom check loading completed",
		"dir", dir,
		"loaded", len(checks),
		"skipped", skipped)

	return checks, nil
}

// parseCheckFile reads and validates one check definition.
func (l *CheckFileLoader) parseCheckFile(path string) (Check, error) {
	if err := fileops.ValidateFileSizeLimit(path, l.maxFileSize); err != nil {
		return Check{}, fmt.Errorf("file size check failed: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Check{}, fmt.Errorf("failed to read file: %w", err)
	}

	var matter CheckFrontmatter
	if _, err := frontmatter.Parse(bytes.NewReader(content), &matter); err != nil {
		return Check{}, fmt.Errorf("no valid frontmatter found: %w", err)
	}

	if err := validateCheckFrontmatter(&matter); err != nil {
		return Check{}, fmt.Errorf("invalid frontmatter: %w", err)
	}

	name, err := fileops.SanitizeIdentifier(matter.Name, 100)
	if err != nil {
		return Check{}, fmt.Errorf("invalid check name: %w", err)
	}
	name = strings.ReplaceAll(name, "-", "_")

	blocking := true
	if matter.Blocking != nil {
		blocking = *matter.Blocking
	}

	timeout := commandTimeout
	if matter.TimeoutSec > 0 {
		timeout = time.Duration(matter.TimeoutSec) * time.Second
	}

	check := CommandCheck(name, matter.Description, parseClass(matter.Class), blocking, timeout, matter.Command, l.repoRoot)
	check.Paths = matter.Paths
	return check, nil
}

func validateCheckFrontmatter(matter *CheckFrontmatter) error {
	if strings.TrimSpace(matter.Name) == "" {
		return fmt.Errorf("missing required 'name' field")
	}
	if strings.TrimSpace(matter.Description) == "" {
		return fmt.Errorf("missing required 'description' field")
	}
	if len(matter.Description) > 500 {
		return fmt.Errorf("description too long (max 500 characters)")
	}
	if len(matter.Command) == 0 {
		return fmt.Errorf("missing required 'command' field")
	}
	switch matter.Class {
	case "", string(runner.ClassCPU), string(runner.ClassIO), string(runner.ClassBrowser):
	default:
		return fmt.Errorf("unknown class %q (want cpu, io or browser)", matter.Class)
	}
	return nil
}

// parseClass maps the frontmatter class field to a resource class, defaulting
// to io for the empty string.
func parseClass(raw string) runner.Class {
	switch raw {
	case string(runner.ClassCPU):
		return runner.ClassCPU
	case string(runner.ClassBrowser):
		return runner.ClassBrowser
	default:
		return runner.ClassIO
	}
}
