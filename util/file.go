package util

import (
	"encoding/json"
	"path/filepath"

	"github.com/twpayne/go-vfs"
)

// EnsureDir creates the parent directory of path if needed.
func EnsureDir(fs vfs.FS, path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return vfs.MkdirAll(fs, dir, 0755)
}

func SaveJson(fs vfs.FS, path string, data interface{}) error {
	if err := EnsureDir(fs, path); err != nil {
		return err
	}
	bs, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return fs.WriteFile(path, bs, 0644)
}

// SaveFile writes raw bytes, creating parent directories.
func SaveFile(fs vfs.FS, path string, data []byte) error {
	if err := EnsureDir(fs, path); err != nil {
		return err
	}
	return fs.WriteFile(path, data, 0644)
}
