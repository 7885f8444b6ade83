package workspace

import (
	"os"
	"path/filepath"

	"github.com/codefionn/werkbank/internal/logger"
)

// DirectoryEntry describes one immediate child of a listed directory.
// Size is best-effort: 0 when the entry cannot be stat'ed, e.g. a broken
// symlink.
type DirectoryEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	IsDirectory bool   `json:"isDirectory"`
	Size        int64  `json:"size"`
}

// ReadResult is the outcome of a scoped file read.
type ReadResult struct {
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteResult is the outcome of a scoped file write.
type WriteResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ListResult is the outcome of a scoped directory listing.
type ListResult struct {
	Success bool             `json:"success"`
	Entries []DirectoryEntry `json:"entries"`
	Error   string           `json:"error,omitempty"`
}

// Accessor performs filesystem operations scoped to a single workspace.
// Resolution failures never escape as errors; they are converted into the
// result structs the UI consumes.
type Accessor struct {
	workspace string
	log       *logger.Logger
}

// NewAccessor creates an accessor bound to a raw workspace path. The path
// is re-resolved on every operation, matching the lifecycle of the
// caller-supplied workspace selection.
func NewAccessor(workspaceRaw string) *Accessor {
	return &Accessor{
		workspace: workspaceRaw,
		log:       logger.Global().WithPrefix("workspace"),
	}
}

// Read reads the full contents of path as UTF-8 text.
func (a *Accessor) Read(path string) ReadResult {
	resolved, err := ResolveScoped(path, a.workspace)
	if err != nil {
		a.log.Warn("read: resolve %s failed: %v", path, err)
		return ReadResult{Error: err.Error()}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return ReadResult{Error: err.Error()}
	}

	return ReadResult{Success: true, Content: string(data)}
}

// Write overwrites path with content. The parent-resolution branch of
// ResolveScoped permits targets that do not exist yet.
func (a *Accessor) Write(path, content string) WriteResult {
	resolved, err := ResolveScoped(path, a.workspace)
	if err != nil {
		a.log.Warn("write: resolve %s failed: %v", path, err)
		return WriteResult{Error: err.Error()}
	}

	if err := os.WriteFile(resolved, []byte(content), 0644); err != nil {
		return WriteResult{Error: err.Error()}
	}

	a.log.Debug("write: %s (%d bytes)", resolved, len(content))
	return WriteResult{Success: true}
}

// Exists reports whether path exists inside the workspace. It returns
// false both when the file is missing and when resolution itself failed;
// callers cannot distinguish the two from this call alone.
func (a *Accessor) Exists(path string) bool {
	resolved, err := ResolveScoped(path, a.workspace)
	if err != nil {
		return false
	}
	_, err = os.Stat(resolved)
	return err == nil
}

// List returns the immediate children of path, no recursion.
func (a *Accessor) List(path string) ListResult {
	resolved, err := ResolveScoped(path, a.workspace)
	if err != nil {
		a.log.Warn("list: resolve %s failed: %v", path, err)
		return ListResult{Error: err.Error()}
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return ListResult{Error: err.Error()}
	}

	result := make([]DirectoryEntry, 0, len(entries))
	for _, entry := range entries {
		full := filepath.Join(resolved, entry.Name())
		var size int64
		isDir := entry.IsDir()
		if info, statErr := os.Stat(full); statErr == nil {
			size = info.Size()
			isDir = info.IsDir()
		}
		result = append(result, DirectoryEntry{
			Name:        entry.Name(),
			Path:        full,
			IsDirectory: isDir,
			Size:        size,
		})
	}

	return ListResult{Success: true, Entries: result}
}
