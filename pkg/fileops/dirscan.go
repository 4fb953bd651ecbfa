package fileops

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// markdownExtensions contains the markdown extensions recognized when
// discovering check definition files.
var markdownExtensions = []string{
	".md", ".mdown", ".mkdn", ".mkd", ".markdown",
}

// defaultSkipDirs are directory names never descended into during scans.
var defaultSkipDirs = []string{
	"node_modules", ".git", "vendor", "target", "build",
	".next", "dist", ".cache", "__pycache__", ".vscode", ".idea",
}

// ScanMarkdownFiles walks root and returns the absolute paths of all markdown
// files found, skipping dependency/build directories and symlinked
// directories. Unreadable entries are skipped rather than failing the scan.
func ScanMarkdownFiles(root string) ([]string, error) {
	if err := ValidatePathSecurity(root); err != nil {
		return nil, fmt.Errorf("invalid scan root: %w", err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve scan root: %w", err)
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry: skip it, keep scanning.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != abs && slices.Contains(defaultSkipDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are not followed: a check directory should be plain files.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if IsMarkdownFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	return files, nil
}

// IsMarkdownFile checks if a filename has a markdown extension.
func IsMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains(markdownExtensions, ext)
}
