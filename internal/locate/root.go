package locate

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ProjectRoot finds the project that startDir belongs to: the nearest
// ancestor holding a .claude directory (other than the global directory
// itself) or a .git entry. Inside a git worktree the walk stops at the
// worktree top level, so a nested .claude below it wins and one above it is
// ignored. When no marker exists the absolute startDir is returned.
func (r *Resolver) ProjectRoot(startDir string) string {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return startDir
	}

	gitRoot := gitWorktreeRoot(absDir)
	if gitRoot != "" {
		gitRoot = filepath.Clean(gitRoot)
	}
	globalDir := filepath.Clean(r.globalDir)
	current := absDir
	for {
		candidate := filepath.Join(current, ClaudeDirName)
		if candidate != globalDir && dirExists(candidate) {
			return current
		}
		if current == gitRoot {
			return gitRoot
		}
		// A .git entry go-git could not open (partial clone, foreign layout)
		// still marks the top of a checkout.
		if pathExists(filepath.Join(current, ".git")) {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			if gitRoot != "" {
				return gitRoot
			}
			return absDir
		}
		current = parent
	}
}

// FindProjectRoot is ProjectRoot with the default resolver.
func FindProjectRoot(startDir string) string {
	return NewResolver().ProjectRoot(startDir)
}

// gitWorktreeRoot returns the top level of the git worktree containing dir,
// or "" when dir is not inside a repository.
func gitWorktreeRoot(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repository
		return ""
	}
	return wt.Filesystem.Root()
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
