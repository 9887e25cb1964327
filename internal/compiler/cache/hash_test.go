package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHasher_HashFile(t *testing.T) {
	hasher := NewFileHasher()
	path := filepath.Join(t.TempDir(), "shapes.go")
	content := "package shapes\n\n//tref:type\ntype Point struct{}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	hash1, err := hasher.HashFile(path)
	require.NoError(t, err)
	// sha256 of content
	assert.Len(t, hash1, 64)
	again, err := hasher.HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, hash1, again)

	require.NoError(t, os.WriteFile(path, []byte(content+"\n"), 0644))
	hash2, err := hasher.HashFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2)

	_, err = hasher.HashFile(filepath.Join(t.TempDir(), "missing.go"))
	assert.Error(t, err)
}

func TestFileHasher_HashFiles(t *testing.T) {
	hasher := NewFileHasher()
	dir := t.TempDir()
	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "b.go")
	require.NoError(t, os.WriteFile(a, []byte("package p\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("package p\n\nvar x int\n"), 0644))

	h1, err := hasher.HashFiles([]string{a, b})
	require.NoError(t, err)
	h2, err := hasher.HashFiles([]string{b, a})
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "order of paths must not matter")

	h3, err := hasher.HashFiles([]string{a})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	_, err = hasher.HashFiles([]string{a, filepath.Join(dir, "gone.go")})
	assert.ErrorContains(t, err, "gone.go")
}
