package checks

import (
	"testing"

	"repocheck/internal/logging"
)

func TestCollectChangeSetNonRepo(t *testing.T) {
	logger, _ := logging.NewTestLogger()

	cs, err := CollectChangeSet(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("a plain directory should degrade gracefully, got %v", err)
	}
	if cs != nil {
		t.Errorf("expected nil changeset outside a repository, got %+v", cs)
	}
}

func TestFindLargeFiles(t *testing.T) {
	root := t.TempDir()
	writeCheckFile(t, root, "small.md", "tiny")

	outcome := findLargeFiles(root, []string{"small.md", "missing.md"})
	if !outcome.OK {
		t.Errorf("small and missing files should pass, got %+v", outcome)
	}
}
