package lock

import (
	"path/filepath"
	"testing"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
)

func TestAcquireContention(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if first.Path() != filepath.Join(dir, config.LockFileName) {
		t.Errorf("Path() = %q", first.Path())
	}

	if _, err := Acquire(dir); !errors.IsKind(err, errors.KindLocked) {
		t.Fatalf("second Acquire() error = %v, want KindLocked", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	again, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	_ = again.Release()
}

func TestAcquireMissingDirectory(t *testing.T) {
	_, err := Acquire(filepath.Join(t.TempDir(), "missing"))
	if !errors.IsKind(err, errors.KindIO) {
		t.Errorf("error = %v, want KindIO", err)
	}
}

func TestReleaseNil(t *testing.T) {
	var d *DirLock
	if err := d.Release(); err != nil {
		t.Errorf("Release() on nil = %v", err)
	}
}
