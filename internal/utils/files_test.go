package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("package x\n"), 0o644))
}

func TestFindPackageDirs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.go"))
	touch(t, filepath.Join(root, "shapes", "shapes.go"))
	touch(t, filepath.Join(root, "shapes", "more.go"))
	touch(t, filepath.Join(root, "shapes", "testdata", "x.go"))
	touch(t, filepath.Join(root, "vendor", "dep", "dep.go"))
	touch(t, filepath.Join(root, ".git", "hook.go"))
	touch(t, filepath.Join(root, "_old", "old.go"))
	touch(t, filepath.Join(root, "docs", "README.md"))

	dirs, err := FindPackageDirs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{root, filepath.Join(root, "shapes")}, dirs)
}

func TestExpandPatterns(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "a.go"))
	touch(t, filepath.Join(root, "b", "b.go"))
	touch(t, filepath.Join(root, "file.go"))

	t.Run("recursive", func(t *testing.T) {
		dirs, err := ExpandPatterns([]string{filepath.Join(root, "...")})
		require.NoError(t, err)
		assert.Equal(t, []string{root, filepath.Join(root, "a"), filepath.Join(root, "b")}, dirs)
	})

	t.Run("deduplicates", func(t *testing.T) {
		a := filepath.Join(root, "a")
		dirs, err := ExpandPatterns([]string{a, a + "/", root + "/..."})
		require.NoError(t, err)
		assert.Equal(t, a, dirs[0])
		assert.Len(t, dirs, 3)
	})

	t.Run("rejects files", func(t *testing.T) {
		_, err := ExpandPatterns([]string{filepath.Join(root, "file.go")})
		assert.Error(t, err)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := ExpandPatterns([]string{filepath.Join(root, "nope")})
		assert.Error(t, err)
	})
}
