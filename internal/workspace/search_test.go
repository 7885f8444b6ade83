package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkFile(t *testing.T, root string, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte("content"), 0644))
}

func TestSearchIgnoresListedDirsAndDotfiles(t *testing.T) {
	ws := t.TempDir()
	mkFile(t, ws, "src/app.ts")
	mkFile(t, ws, "node_modules/x.ts")
	mkFile(t, ws, ".git/config")
	mkFile(t, ws, ".hidden.ts")
	mkFile(t, ws, "dist/app.ts")

	results := Search(ws, "app")
	require.Len(t, results, 1)
	assert.Equal(t, "app.ts", results[0].Name)
	assert.Equal(t, filepath.Join("src", "app.ts"), results[0].RelativePath)
	assert.False(t, results[0].IsDirectory)
}

func TestSearchCapAndDeterminism(t *testing.T) {
	ws := t.TempDir()
	for i := 0; i < 30; i++ {
		mkFile(t, ws, fmt.Sprintf("pkg/match_%02d.go", i))
	}

	first := Search(ws, "match")
	assert.Len(t, first, 20)

	second := Search(ws, "match")
	assert.Equal(t, first, second)
}

func TestSearchOrdering(t *testing.T) {
	ws := t.TempDir()
	mkFile(t, ws, "lib/report/main.go")
	mkFile(t, ws, "lib/report.go")
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "report"), 0755))

	results := Search(ws, "report")
	require.NotEmpty(t, results)

	// Directories come before files.
	sawFile := false
	for _, r := range results {
		if !r.IsDirectory {
			sawFile = true
		} else {
			assert.False(t, sawFile, "directory %s sorted after a file", r.RelativePath)
		}
	}

	// Exact name match sorts before substring matches of the same type.
	var dirNames []string
	for _, r := range results {
		if r.IsDirectory {
			dirNames = append(dirNames, r.Name)
		}
	}
	require.NotEmpty(t, dirNames)
	assert.Equal(t, "report", dirNames[0])
}

func TestSearchExactMatchBeforeSubstring(t *testing.T) {
	ws := t.TempDir()
	mkFile(t, ws, "a/app_helper.ts")
	mkFile(t, ws, "deeper/dir/app")

	results := Search(ws, "app")
	require.Len(t, results, 2)
	assert.Equal(t, "app", results[0].Name)
	assert.Equal(t, "app_helper.ts", results[1].Name)
}

func TestSearchShorterRelativePathFirst(t *testing.T) {
	ws := t.TempDir()
	mkFile(t, ws, "a/b/c/widget.go")
	mkFile(t, ws, "widget.go")

	results := Search(ws, "widget")
	require.Len(t, results, 2)
	assert.Equal(t, "widget.go", results[0].RelativePath)
	assert.Equal(t, filepath.Join("a", "b", "c", "widget.go"), results[1].RelativePath)
}

func TestSearchDepthBound(t *testing.T) {
	ws := t.TempDir()
	mkFile(t, ws, "d1/d2/d3/d4/shallow.txt")
	mkFile(t, ws, "d1/d2/d3/d4/d5/d6/toodeep.txt")

	results := Search(ws, "txt")
	var names []string
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "shallow.txt")
	assert.NotContains(t, names, "toodeep.txt")
}

func TestSearchMatchesRelativePathSegments(t *testing.T) {
	ws := t.TempDir()
	mkFile(t, ws, "handlers/auth.go")

	results := Search(ws, "handlers/auth")
	if filepath.Separator == '/' {
		require.Len(t, results, 1)
		assert.Equal(t, "auth.go", results[0].Name)
	}
}

func TestSearchUnreadableRootYieldsNothing(t *testing.T) {
	results := Search(filepath.Join(t.TempDir(), "does-not-exist"), "anything")
	assert.Empty(t, results)
}

func TestSearchCaseInsensitive(t *testing.T) {
	ws := t.TempDir()
	mkFile(t, ws, "src/ReadMe.MD")

	results := Search(ws, "readme")
	require.Len(t, results, 1)
	assert.True(t, strings.EqualFold("ReadMe.MD", results[0].Name))
}
