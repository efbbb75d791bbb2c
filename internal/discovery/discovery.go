// Package discovery finds the video files of a batch.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/util"
)

// Logger defines the interface for discovery logging.
type Logger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
}

// Result contains the results of file discovery with metadata.
type Result struct {
	Files        []string
	SkippedCount int
}

// FindVideoFiles lists the files directly inside dir whose extension is in
// extensions (lowercase, with leading dot). Subdirectories and hidden files
// are ignored. Files are sorted case-insensitively by name so every run
// processes them in the same order.
func FindVideoFiles(dir string, extensions map[string]bool) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.NewPathError("directory does not exist: " + dir)
	}
	if !info.IsDir() {
		return nil, errors.NewPathError(dir + " is not a directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewIOError("cannot read directory "+dir, err)
	}

	result := &Result{}
	for _, entry := range entries {
		if entry.IsDir() || util.IsHidden(entry.Name()) {
			continue
		}

		// Symlinks are followed; anything that isn't a regular file is skipped.
		fullPath := filepath.Join(dir, entry.Name())
		if !util.FileExists(fullPath) {
			result.SkippedCount++
			continue
		}

		if extensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			result.Files = append(result.Files, fullPath)
		} else {
			result.SkippedCount++
		}
	}

	if len(result.Files) == 0 {
		return nil, errors.NewNoFilesFoundError(dir)
	}

	sort.SliceStable(result.Files, func(i, j int) bool {
		a := strings.ToLower(filepath.Base(result.Files[i]))
		b := strings.ToLower(filepath.Base(result.Files[j]))
		if a == b {
			return result.Files[i] < result.Files[j]
		}
		return a < b
	})

	return result, nil
}

// FindVideoFilesWithLogging runs FindVideoFiles and logs the first few files
// found plus a count summary.
func FindVideoFilesWithLogging(dir string, extensions map[string]bool, logger Logger) (*Result, error) {
	result, err := FindVideoFiles(dir, extensions)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logDiscoveredFiles(result, logger)
	}
	return result, nil
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(result *Result, logger Logger) {
	logger.Info("Found %d video file(s), skipped %d other file(s)", len(result.Files), result.SkippedCount)

	maxToLog := min(5, len(result.Files))
	for i := 0; i < maxToLog; i++ {
		logger.Debug("  %s", filepath.Base(result.Files[i]))
	}

	if len(result.Files) > 5 {
		logger.Debug("  ... and %d more", len(result.Files)-5)
	}
}
