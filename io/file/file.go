// Package file provides the filesystem helpers shared across the devnet
// tooling. Writes that replace an existing artifact go through a temp file
// in the same directory followed by a rename, so a failure mid-write never
// leaves a truncated file behind.
package file

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Exists returns true if a file or directory is present at the given path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// HasDir returns true if the path exists and is a directory.
func HasDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// MkdirAll creates a directory along with any missing parents.
func MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFileAtomic writes data to path, replacing any previous contents. The
// data lands in a temp file first and is renamed into place, and the previous
// file's permissions are preserved when one exists.
func WriteFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}

	dir := filepath.Dir(path)
	tmp, err := ioutil.TempFile(dir, "."+filepath.Base(path)+".tmp")
	if err != nil {
		return errors.Wrapf(err, "could not create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op unless an earlier failure left the temp file behind.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "could not write %s", tmpName)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "could not chmod %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "could not close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "could not rename %s to %s", tmpName, path)
	}
	return nil
}
