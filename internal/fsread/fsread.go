// Package fsread implements the recoverable-absence contract shared by every
// surface scanner: a missing file or directory is "nothing here", and content
// that fails to parse is likewise "nothing here". Callers never see an error.
package fsread

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// ReadDir returns the entries of dir sorted by name, or nil if dir cannot be
// read for any reason.
func ReadDir(dir string) []fs.DirEntry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("skipping unreadable directory",
				slog.String("path", dir),
				slog.String("error", err.Error()))
		}
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries
}

// ReadFile returns the content of path, or nil if it is absent, a directory,
// or unreadable.
func ReadFile(path string) []byte {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("skipping unreadable file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}
	return data
}

// ReadJSON decodes path as JSON, tolerating comments and trailing commas.
// Returns nil for absent or malformed files.
func ReadJSON(path string) any {
	data := ReadFile(path)
	if data == nil {
		return nil
	}
	v, err := DecodeJSON(data)
	if err != nil {
		slog.Debug("skipping malformed JSON",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}
	return v
}

// ReadJSONObject is ReadJSON restricted to files whose top level is an
// object. Any other shape yields nil.
func ReadJSONObject(path string) map[string]any {
	obj, _ := ReadJSON(path).(map[string]any)
	return obj
}

// DecodeJSON parses JSONC content into generic values.
func DecodeJSON(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(jsonc.ToJSON(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarkdownFiles returns the paths of *.md regular files directly inside dir.
func MarkdownFiles(dir string) []string {
	var out []string
	for _, entry := range ReadDir(dir) {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	return out
}

// LineCount returns the number of lines in s. A trailing newline does not
// start an extra line; the empty string has zero lines.
func LineCount(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
