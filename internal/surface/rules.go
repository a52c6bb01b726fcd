package surface

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Aman-CERP/confscope/internal/fsread"
	"github.com/Aman-CERP/confscope/internal/locate"
	"github.com/Aman-CERP/confscope/internal/scope"
)

// RuleEntry is a markdown rule file.
type RuleEntry struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Paths       []string          `json:"paths,omitempty"`
	Body        string            `json:"body"`
	LineCount   int               `json:"lineCount"`
	Scope       scope.ConfigScope `json:"scope"`
	Source      scope.EntrySource `json:"source"`
	FilePath    string            `json:"filePath"`
	Editable    bool              `json:"editable"`
}

// Matches reports whether the rule applies to relPath (slash-separated, relative
// to the project root). A rule without path globs applies everywhere.
func (r RuleEntry) Matches(relPath string) bool {
	if len(r.Paths) == 0 {
		return true
	}
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range r.Paths {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

// RulesSurface accumulates rules from the project and global rule directories.
type RulesSurface struct {
	Rules []RuleEntry `json:"rules"`
}

// ScanRules walks each rule directory recursively for markdown files.
func ScanRules(in Input) RulesSurface {
	out := RulesSurface{Rules: []RuleEntry{}}
	for _, loc := range in.Resolver.RuleDirs(in.ProjectPath) {
		for _, rel := range ruleFiles(loc.Path) {
			full := filepath.Join(loc.Path, filepath.FromSlash(rel))
			content := fsread.ReadFile(full)
			if content == nil {
				continue
			}
			header, body := fsread.FrontMatter(content)
			out.Rules = append(out.Rules, decodeRule(in.Gate, loc, rel, full, header, body))
		}
	}
	return out
}

// ruleFiles returns the slash-separated relative paths of markdown files
// under dir, sorted. A missing directory yields nil.
func ruleFiles(dir string) []string {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.md", doublestar.WithFilesOnly())
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

func decodeRule(gate *scope.Gate, loc locate.Location, rel, full string, header map[string]any, body string) RuleEntry {
	paths := splitList(header["paths"])
	if paths == nil {
		paths = splitList(header["globs"])
	}
	body = strings.TrimSpace(body)
	return RuleEntry{
		Name:        strings.TrimSuffix(rel, path.Ext(rel)),
		Description: asString(header["description"]),
		Paths:       paths,
		Body:        body,
		LineCount:   fsread.LineCount(body),
		Scope:       loc.Scope,
		Source:      loc.Source,
		FilePath:    full,
		Editable:    gate.Editable(loc.Scope),
	}
}
