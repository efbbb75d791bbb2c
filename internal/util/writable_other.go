//go:build !unix

package util

import (
	"fmt"
	"os"
)

// EnsureDirectoryWritable checks that path is a directory.
func EnsureDirectoryWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
