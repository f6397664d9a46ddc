// Package clipboard puts capture locations on the system clipboard.
package clipboard

import (
	"path/filepath"

	cb "github.com/atotto/clipboard"
)

// Supported reports whether a clipboard backend is available.
func Supported() bool {
	return !cb.Unsupported
}

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}

// CopyPath copies the absolute form of path and returns it.
func CopyPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return abs, cb.WriteAll(abs)
}
