package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	maxSearchDepth   = 4
	maxSearchResults = 20
)

// ignoredNames are never returned and, for directories, never descended
// into. Dot-entries are excluded separately.
var ignoredNames = map[string]struct{}{
	"node_modules":  {},
	".git":          {},
	"dist":          {},
	"dist-electron": {},
	".next":         {},
	".vite":         {},
	"coverage":      {},
	"__pycache__":   {},
	".cache":        {},
}

// FileSearchResult is one hit of a workspace file search.
type FileSearchResult struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	RelativePath string `json:"relativePath"`
	IsDirectory  bool   `json:"isDirectory"`
}

// Search walks the workspace (depth-bounded) and returns entries whose
// name or relative path contains query, case-insensitively. Directories
// sort before files, exact name matches before substring matches,
// shorter relative paths first; at most 20 results.
//
// The workspace path is trusted as given (tilde-expanded only); unlike
// the read/write path there is no containment check on the search root.
// Unreadable directories are skipped silently; an unreadable root yields
// an empty result rather than an error.
func Search(workspaceRaw, query string) []FileSearchResult {
	base := ExpandTilde(workspaceRaw)

	var all []FileSearchResult
	walkFiles(base, base, 0, &all)

	q := strings.ToLower(query)
	filtered := make([]FileSearchResult, 0, len(all))
	for _, f := range all {
		if strings.Contains(strings.ToLower(f.RelativePath), q) ||
			strings.Contains(strings.ToLower(f.Name), q) {
			filtered = append(filtered, f)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.IsDirectory != b.IsDirectory {
			return a.IsDirectory
		}
		aExact := strings.ToLower(a.Name) == q
		bExact := strings.ToLower(b.Name) == q
		if aExact != bExact {
			return aExact
		}
		return len(a.RelativePath) < len(b.RelativePath)
	})

	if len(filtered) > maxSearchResults {
		filtered = filtered[:maxSearchResults]
	}
	return filtered
}

func walkFiles(dir, base string, depth int, out *[]FileSearchResult) {
	if depth > maxSearchDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Best effort: unreadable directories contribute no entries.
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if skipName(name) {
			continue
		}

		full := filepath.Join(dir, name)
		rel, relErr := filepath.Rel(base, full)
		if relErr != nil {
			rel = full
		}

		if entry.IsDir() {
			*out = append(*out, FileSearchResult{
				Name:         name,
				Path:         full,
				RelativePath: rel,
				IsDirectory:  true,
			})
			walkFiles(full, base, depth+1, out)
		} else {
			*out = append(*out, FileSearchResult{
				Name:         name,
				Path:         full,
				RelativePath: rel,
				IsDirectory:  false,
			})
		}
	}
}

func skipName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ignored := ignoredNames[name]
	return ignored
}
