package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePathSecurity rejects paths with traversal sequences or empty input.
// The check is static; it never touches the filesystem.
func ValidatePathSecurity(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Clean and re-check: "a/b/../../c" style inputs survive the raw check
	// only when the cleaner reintroduces the sequence.
	if strings.Contains(filepath.Clean(path), "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	return nil
}

// ValidateFileSizeLimit checks that the file at filePath is a regular file no
// larger than maxSize bytes. Prevents memory exhaustion when reading
// user-supplied check definitions.
func ValidateFileSizeLimit(filePath string, maxSize int64) error {
	if maxSize <= 0 {
		return fmt.Errorf("invalid size limit: %d", maxSize)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filepath.Base(filePath))
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if info.Size() > maxSize {
		return fmt.Errorf("file size %d bytes exceeds limit %d bytes", info.Size(), maxSize)
	}

	return nil
}

// SanitizeIdentifier reduces a free-form name to a safe identifier usable as
// an MCP tool name: alphanumerics, underscores, hyphens and periods only,
// with runs of separators collapsed to a single underscore.
func SanitizeIdentifier(identifier string, maxLength int) (string, error) {
	if strings.TrimSpace(identifier) == "" {
		return "", fmt.Errorf("identifier cannot be empty")
	}

	var clean strings.Builder
	for _, r := range identifier {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			clean.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			clean.WriteRune(r)
		}
	}

	result := strings.TrimSpace(clean.String())
	result = strings.ReplaceAll(result, "  ", " ")
	result = strings.ReplaceAll(result, " ", "_")
	result = strings.ReplaceAll(result, "--", "_")
	result = strings.ReplaceAll(result, "__", "_")

	if maxLength > 0 && len(result) > maxLength {
		result = result[:maxLength]
	}

	result = strings.Trim(result, "_-.")

	if result == "" {
		return "", fmt.Errorf("identifier becomes empty after sanitization")
	}

	return result, nil
}
