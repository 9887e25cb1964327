package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindPackageDirs recursively finds all directories under root that contain
// .go files. Hidden, underscore-prefixed, testdata and vendor directories are
// skipped, as the go tool does.
func FindPackageDirs(root string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) == ".go" {
			dir := filepath.Dir(path)
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(dirs)
	return dirs, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "testdata" || name == "vendor"
}

// ExpandPatterns turns command-line package arguments into directories.
// "dir/..." expands recursively; anything else must be a directory.
// No arguments means the current directory.
func ExpandPatterns(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, p := range patterns {
		if root, ok := strings.CutSuffix(p, "..."); ok {
			root = strings.TrimSuffix(root, "/")
			if root == "" {
				root = "."
			}
			found, err := FindPackageDirs(root)
			if err != nil {
				return nil, fmt.Errorf("failed to expand %s: %w", p, err)
			}
			for _, dir := range found {
				add(dir)
			}
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", p)
		}
		add(p)
	}

	return dirs, nil
}
