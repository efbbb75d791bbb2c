//go:build unix

package util

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// EnsureDirectoryWritable checks that path is a directory the current user
// can list, enter and create files in.
func EnsureDirectoryWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("%s: insufficient permissions: %w", path, err)
	}
	return nil
}
