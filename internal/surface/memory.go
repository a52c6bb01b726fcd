package surface

import (
	"path/filepath"

	"github.com/Aman-CERP/confscope/internal/fsread"
	"github.com/Aman-CERP/confscope/internal/scope"
)

// MemoryFile is a memory note kept for the project.
type MemoryFile struct {
	Name      string            `json:"name"`
	FilePath  string            `json:"filePath"`
	LineCount int               `json:"lineCount"`
	Scope     scope.ConfigScope `json:"scope"`
	Editable  bool              `json:"editable"`
}

// MemorySurface lists the project's memory notes.
type MemorySurface struct {
	Files []MemoryFile `json:"files"`
}

// ScanMemory reads the per-project memory directory.
func ScanMemory(in Input) MemorySurface {
	out := MemorySurface{Files: []MemoryFile{}}
	loc := in.Resolver.MemoryDir(in.ProjectPath)
	for _, path := range fsread.MarkdownFiles(loc.Path) {
		content := fsread.ReadFile(path)
		if content == nil {
			continue
		}
		out.Files = append(out.Files, MemoryFile{
			Name:      filepath.Base(path),
			FilePath:  path,
			LineCount: fsread.LineCount(string(content)),
			Scope:     loc.Scope,
			Editable:  in.Gate.Editable(loc.Scope),
		})
	}
	return out
}
