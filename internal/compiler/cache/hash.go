// Package cache keeps the generator from redoing work: content hashes of a
// package's sources and the output last generated for them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// FileHasher computes content hashes for cache keys
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashFile computes a SHA-256 hash of the file contents
func (fh *FileHasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashFiles hashes a set of files into one key. The result depends on the
// base names and contents, not on the order of paths.
func (fh *FileHasher) HashFiles(paths []string) (string, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	hasher := sha256.New()
	for _, path := range sorted {
		sum, err := fh.HashFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", path, err)
		}
		fmt.Fprintf(hasher, "%s\x00%s\n", filepath.Base(path), sum)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
