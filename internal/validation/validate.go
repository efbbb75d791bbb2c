package validation

import (
	"context"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/discovery"
	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/ffprobe"
	"github.com/eucVeteran/video-normalization-pipeline/internal/logging"
)

// VerifyFile probes path and compares its signalling to profile. A probe
// failure produces a failed report, not an error.
func VerifyFile(ctx context.Context, analyzer MediaAnalyzer, path string, profile config.TargetProfile) Report {
	report := Report{Path: path}

	meta, err := analyzer.ProbeVideoStream(ctx, path)
	if err != nil {
		logging.Error("cannot read output metadata", "path", path, "error", err)
		report.ProbeError = err
		return report
	}

	report.Measured = &meta
	report.Checks = compare(meta, profile)
	return report
}

// compare builds the checks in a fixed order.
func compare(meta ffprobe.StreamMetadata, profile config.TargetProfile) []Check {
	pairs := []struct {
		name     string
		expected string
		actual   string
	}{
		{CheckPixelFormat, profile.PixelFormat, meta.PixelFormat},
		{CheckColorSpace, profile.ColorSpace, meta.ColorSpace},
		{CheckColorTransfer, profile.ColorTransfer, meta.TransferCharacteristic},
		{CheckColorPrimaries, profile.ColorPrimaries, meta.ColorPrimaries},
		{CheckCodec, profile.CodecName, meta.CodecName},
	}

	checks := make([]Check, 0, len(pairs))
	for _, p := range pairs {
		checks = append(checks, Check{
			Name:     p.name,
			Expected: p.expected,
			Actual:   p.actual,
			Passed:   p.actual == p.expected,
		})
	}
	return checks
}

// VerifyFiles verifies each path in order. It stops early only when ctx is
// cancelled, returning the reports gathered so far and a KindCancelled error.
func VerifyFiles(ctx context.Context, analyzer MediaAnalyzer, paths []string, profile config.TargetProfile) (Summary, error) {
	var summary Summary
	for _, path := range paths {
		if ctx.Err() != nil {
			return summary, errors.NewCancelledError(ctx.Err())
		}
		summary.add(VerifyFile(ctx, analyzer, path, profile))
	}
	return summary, nil
}

// VerifyDirectory verifies every video file directly inside dir whose
// extension is in extensions. An empty directory is a KindNoFilesFound error.
func VerifyDirectory(ctx context.Context, analyzer MediaAnalyzer, dir string, extensions map[string]bool, profile config.TargetProfile) (Summary, error) {
	found, err := discovery.FindVideoFiles(dir, extensions)
	if err != nil {
		return Summary{}, err
	}
	return VerifyFiles(ctx, analyzer, found.Files, profile)
}
