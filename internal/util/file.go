package util

import (
	"os"
	"path/filepath"
	"strings"
)

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0o755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsHidden reports whether the base name of path starts with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// ResolveOutputPath names the output for inputPath: the input stem plus
// suffix, keeping the input's extension, inside outputDir.
func ResolveOutputPath(inputPath, outputDir, suffix string) string {
	ext := filepath.Ext(inputPath)
	return filepath.Join(outputDir, GetFileStem(inputPath)+suffix+ext)
}

// RemoveIfExists deletes a file, ignoring a file that is already gone.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
