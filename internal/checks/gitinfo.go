package checks

import (
	"fmt"
	"sort"

	"repocheck/internal/logging"

	git "github.com/go-git/go-git/v6"
)

// ChangeSet captures what the current commit-in-progress touches: every path
// with staged or unstaged modifications, plus the HEAD commit message for the
// commit-message check.
//
// A nil ChangeSet means "no git information available"; conditional checks
// then run unconditionally rather than being skipped on guesswork.
type ChangeSet struct {
	Files       []string
	HeadMessage string
}

// CollectChangeSet inspects the repository at repoPath. When the path is not
// a git repository it returns (nil, nil) so callers degrade to running every
// check; any other failure is a real error.
func CollectChangeSet(repoPath string, logger *logging.AppLogger) (*ChangeSet, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		if err == git.ErrRepositoryNotExists {
			logger.Debug("Not a git repository, conditional checks will all run", "path", repoPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get working tree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get working tree status: %w", err)
	}

	cs := &ChangeSet{}
	for path, st := range status {
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		cs.Files = append(cs.Files, path)
	}
	sort.Strings(cs.Files)

	// HEAD may not exist in a freshly initialized repository; the
	// commit-message check handles the empty message itself.
	if head, err := repo.Head(); err == nil {
		if commit, err := repo.CommitObject(head.Hash()); err == nil {
			cs.HeadMessage = commit.Message
		}
	}

	logger.Debug("Collected changeset", "files", len(cs.Files))
	return cs, nil
}
