// Package filesys provides the small set of filesystem utilities the store
// needs to prepare its data directory and the stream context's state
// directory before the backing engine opens its data file.
package filesys

import (
	"errors"
	"os"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir creates a directory at the specified path with the given permissions.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if !force {
		if err == nil {
			return &os.PathError{Op: "mkdir", Path: dirPath, Err: os.ErrExist}
		}
		if !os.IsNotExist(err) {
			return err
		}
	}

	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, permission)
}

// Exists checks if a file or directory at the given path exists.
func Exists(file string) (bool, error) {
	_, err := os.Stat(file)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
