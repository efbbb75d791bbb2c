// Package validation checks that produced files carry the target colour
// signalling. It only reads metadata; files are never modified or removed.
package validation

import (
	"context"

	"github.com/eucVeteran/video-normalization-pipeline/internal/ffprobe"
)

// MediaAnalyzer provides media analysis capabilities for validation.
// This interface allows validation logic to be tested without external tools.
type MediaAnalyzer interface {
	// ProbeVideoStream returns the colour metadata of the first video stream.
	ProbeVideoStream(ctx context.Context, path string) (ffprobe.StreamMetadata, error)
}

// NewDefaultAnalyzer returns an ffprobe-backed analyzer.
func NewDefaultAnalyzer(ffprobePath string) MediaAnalyzer {
	return ffprobe.New(ffprobePath)
}
