package locate

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Worktrees returns every git worktree associated with the repository at
// repoPath, main worktree first. It asks git when the binary is available
// and otherwise reads the worktree metadata under the common git directory.
// A path that is not a repository yields just itself.
func Worktrees(ctx context.Context, repoPath string) ([]string, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		absPath = repoPath
	}

	if paths, ok := worktreesFromGit(ctx, absPath); ok {
		return paths, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return worktreesFromGitDir(absPath), nil
}

// worktreesFromGit runs `git worktree list --porcelain`.
func worktreesFromGit(ctx context.Context, dir string) ([]string, bool) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, false
	}
	cmd := exec.CommandContext(ctx, "git", "worktree", "list", "--porcelain")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		slog.Debug("git worktree list failed",
			slog.String("path", dir),
			slog.String("error", err.Error()))
		return nil, false
	}
	paths := ParseWorktreePorcelain(out)
	if len(paths) == 0 {
		return nil, false
	}
	return paths, true
}

// ParseWorktreePorcelain extracts worktree paths from the porcelain output
// of `git worktree list`. Bare entries and worktrees whose directory no
// longer exists are skipped.
func ParseWorktreePorcelain(out []byte) []string {
	var paths []string
	var current string
	bare := false

	flush := func() {
		if current != "" && !bare && dirExists(current) {
			paths = append(paths, filepath.Clean(current))
		}
		current = ""
		bare = false
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			current = strings.TrimPrefix(line, "worktree ")
		case line == "bare":
			bare = true
		}
	}
	flush()
	return paths
}

// worktreesFromGitDir reconstructs the worktree list from .git metadata:
// the main worktree owns the common dir, and each linked worktree has a
// <common>/worktrees/<name>/gitdir file pointing at its .git file.
func worktreesFromGitDir(repoPath string) []string {
	commonDir := commonGitDir(repoPath)
	if commonDir == "" {
		return []string{repoPath}
	}

	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if seen[p] || !dirExists(p) {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	if filepath.Base(commonDir) == ".git" {
		add(filepath.Dir(commonDir))
	}

	entries, err := os.ReadDir(filepath.Join(commonDir, "worktrees"))
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			content, err := os.ReadFile(filepath.Join(commonDir, "worktrees", entry.Name(), "gitdir"))
			if err != nil {
				continue
			}
			gitFile := strings.TrimSpace(string(content))
			if gitFile == "" {
				continue
			}
			if !filepath.IsAbs(gitFile) {
				gitFile = filepath.Join(commonDir, "worktrees", entry.Name(), gitFile)
			}
			add(filepath.Dir(gitFile))
		}
	}

	if len(paths) == 0 {
		return []string{repoPath}
	}
	return paths
}

// commonGitDir returns the shared git directory for the checkout at dir,
// following a .git file and its commondir pointer for linked worktrees.
func commonGitDir(dir string) string {
	dotGit := filepath.Join(dir, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		return dotGit
	}

	content, err := os.ReadFile(dotGit)
	if err != nil {
		return ""
	}
	gitDir := parseGitdir(string(content))
	if gitDir == "" {
		return ""
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}

	common, err := os.ReadFile(filepath.Join(gitDir, "commondir"))
	if err != nil {
		return gitDir
	}
	commonPath := strings.TrimSpace(string(common))
	if !filepath.IsAbs(commonPath) {
		commonPath = filepath.Join(gitDir, commonPath)
	}
	return filepath.Clean(commonPath)
}

// parseGitdir extracts the gitdir path from a .git file content.
func parseGitdir(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "gitdir:") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(content, "gitdir:"))
}
