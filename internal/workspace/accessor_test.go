package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessorWriteThenRead(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(ws, "new"), 0755))

	acc := NewAccessor(ws)

	wr := acc.Write("new/file.txt", "hi")
	require.True(t, wr.Success, "write failed: %s", wr.Error)

	rr := acc.Read("new/file.txt")
	require.True(t, rr.Success, "read failed: %s", rr.Error)
	assert.Equal(t, "hi", rr.Content)
}

func TestAccessorReadFailures(t *testing.T) {
	ws := t.TempDir()
	acc := NewAccessor(ws)

	t.Run("missing file", func(t *testing.T) {
		rr := acc.Read("nope.txt")
		assert.False(t, rr.Success)
		assert.NotEmpty(t, rr.Error)
	})

	t.Run("escape is reported as data, not panic", func(t *testing.T) {
		rr := acc.Read("../../etc/passwd")
		assert.False(t, rr.Success)
		assert.Equal(t, "path is outside workspace root", rr.Error)
	})
}

func TestAccessorWriteEscape(t *testing.T) {
	ws := t.TempDir()
	acc := NewAccessor(ws)

	wr := acc.Write("../evil.txt", "x")
	assert.False(t, wr.Success)
	assert.Equal(t, "path is outside workspace root", wr.Error)
}

func TestAccessorExists(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, "present.txt"), []byte("x"), 0644))
	acc := NewAccessor(ws)

	assert.True(t, acc.Exists("present.txt"))
	assert.False(t, acc.Exists("absent.txt"))
	// Resolution failure and plain absence are indistinguishable here.
	assert.False(t, acc.Exists("../outside.txt"))
}

func TestAccessorList(t *testing.T) {
	ws := t.TempDir()
	acc := NewAccessor(ws)

	t.Run("empty workspace", func(t *testing.T) {
		lr := acc.List(".")
		require.True(t, lr.Success, "list failed: %s", lr.Error)
		assert.Empty(t, lr.Entries)
	})

	t.Run("immediate children only", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(ws, "a.txt"), []byte("hello"), 0644))
		require.NoError(t, os.MkdirAll(filepath.Join(ws, "sub", "nested"), 0755))

		lr := acc.List(".")
		require.True(t, lr.Success)
		require.Len(t, lr.Entries, 2)

		byName := map[string]DirectoryEntry{}
		for _, e := range lr.Entries {
			byName[e.Name] = e
		}
		assert.False(t, byName["a.txt"].IsDirectory)
		assert.Equal(t, int64(5), byName["a.txt"].Size)
		assert.True(t, byName["sub"].IsDirectory)
	})

	t.Run("broken symlink gets size zero", func(t *testing.T) {
		dir := filepath.Join(ws, "links")
		require.NoError(t, os.Mkdir(dir, 0755))
		require.NoError(t, os.Symlink(filepath.Join(ws, "gone"), filepath.Join(dir, "dangling")))

		lr := acc.List("links")
		require.True(t, lr.Success, "list failed: %s", lr.Error)
		require.Len(t, lr.Entries, 1)
		assert.Equal(t, "dangling", lr.Entries[0].Name)
		assert.Equal(t, int64(0), lr.Entries[0].Size)
		assert.False(t, lr.Entries[0].IsDirectory)
	})

	t.Run("list a file fails as data", func(t *testing.T) {
		lr := acc.List("a.txt")
		assert.False(t, lr.Success)
		assert.NotEmpty(t, lr.Error)
	})
}
