package picker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// MoveTo moves artifact into dir and returns the new path. It falls back to
// copy and remove when a rename crosses filesystems.
func MoveTo(artifact, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	dest := filepath.Join(dir, filepath.Base(artifact))
	if filepath.Clean(dest) == filepath.Clean(artifact) {
		return dest, nil
	}
	if err := os.Rename(artifact, dest); err == nil {
		return dest, nil
	}

	src, err := os.Open(artifact)
	if err != nil {
		return "", err
	}
	defer src.Close()
	dst, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dest)
		return "", fmt.Errorf("copying capture: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	os.Remove(artifact)
	return dest, nil
}

// Candidates lists files in dir whose extension is one of kinds, newest first.
func Candidates(dir string, kinds []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type candidate struct {
		path string
		mod  int64
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !slices.Contains(kinds, ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{filepath.Join(dir, e.Name()), info.ModTime().UnixNano()})
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].mod > found[j].mod })

	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.path
	}
	return paths, nil
}
