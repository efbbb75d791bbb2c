// Package processing runs the per-file normalization loop.
package processing

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/dynrange"
	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/ffmpeg"
	"github.com/eucVeteran/video-normalization-pipeline/internal/ffprobe"
	"github.com/eucVeteran/video-normalization-pipeline/internal/filterchain"
	"github.com/eucVeteran/video-normalization-pipeline/internal/reporter"
	"github.com/eucVeteran/video-normalization-pipeline/internal/util"
)

// Prober reads the colour metadata of a file's first video stream.
type Prober interface {
	ProbeVideoStream(ctx context.Context, path string) (ffprobe.StreamMetadata, error)
}

// Engine applies a rendered transform to one file.
type Engine interface {
	Transform(ctx context.Context, params ffmpeg.TransformParams, callback ffmpeg.ProgressCallback) error
}

// Logger is the subset of the run log the processor writes to.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Result is the outcome of one input file.
type Result struct {
	InputPath      string
	OutputPath     string
	Classification dynrange.Classification
	Chain          filterchain.FilterChain
	Success        bool

	// Err is a *errors.CoreError for every failure; Reason is its message
	// in a form suitable for a one-line summary.
	Err     error
	Reason  string
	Elapsed time.Duration
}

// Processor normalizes files one at a time.
type Processor struct {
	Prober   Prober
	Engine   Engine
	Profile  config.TargetProfile
	Reporter reporter.Reporter
	Log      Logger

	// Suffix is appended to each input stem to name its output.
	Suffix string
}

// ProcessAll normalizes files in order into outputDir. A failing file is
// recorded and the loop moves on; nothing is retried. When ctx is cancelled
// the file in flight is recorded as cancelled and no further file is started,
// so the returned slice may be shorter than files.
func (p *Processor) ProcessAll(ctx context.Context, files []string, outputDir string) []Result {
	rep := p.reporter()
	batchStart := time.Now()

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	rep.BatchStarted(reporter.BatchStartInfo{
		TotalFiles: len(files),
		FileList:   names,
		OutputDir:  outputDir,
	})

	results := make([]Result, 0, len(files))
	cancelled := false

	for i, inputPath := range files {
		// Check for cancellation before starting each file
		if ctx.Err() != nil {
			cancelled = true
			rep.Warning(fmt.Sprintf("Cancelled: %d file(s) not processed", len(files)-i))
			p.logger().Warn("Cancelled with %d file(s) remaining", len(files)-i)
			break
		}

		rep.FileProgress(reporter.FileProgressContext{
			CurrentFile: i + 1,
			TotalFiles:  len(files),
			InputFile:   inputPath,
		})

		res := p.ProcessFile(ctx, inputPath, outputDir)
		results = append(results, res)

		if errors.IsCancelled(res.Err) {
			cancelled = true
			p.logger().Warn("Cancelled while processing %s", inputPath)
			break
		}
	}

	succeeded, failed := Count(results)
	summary := reporter.BatchSummary{
		SuccessfulCount: succeeded,
		FailedCount:     failed,
		TotalFiles:      len(files),
		TotalDuration:   time.Since(batchStart),
		Cancelled:       cancelled,
	}
	for _, r := range results {
		if !r.Success {
			summary.Failures = append(summary.Failures, reporter.FileFailure{
				Filename: filepath.Base(r.InputPath),
				Reason:   r.Reason,
			})
		}
	}
	rep.BatchComplete(summary)
	p.logger().Info("Batch finished: %d succeeded, %d failed of %d", succeeded, failed, len(files))

	if failed == 0 && !cancelled && succeeded > 0 {
		rep.OperationComplete(fmt.Sprintf("Normalized %d file(s) into %s", succeeded, outputDir))
	}

	return results
}

// ProcessFile runs probe, classify, build, render and transform for a single
// input. Every failure is captured in the returned Result.
func (p *Processor) ProcessFile(ctx context.Context, inputPath, outputDir string) Result {
	rep := p.reporter()
	log := p.logger()
	start := time.Now()

	outputPath := util.ResolveOutputPath(inputPath, outputDir, p.Suffix)
	res := Result{InputPath: inputPath, OutputPath: outputPath}

	fail := func(err error, title, suggestion string) Result {
		res.Err = err
		res.Reason = err.Error()
		res.Elapsed = time.Since(start)
		log.Error("%s: %v", inputPath, err)
		rep.Error(reporter.ReporterError{
			Title:      title,
			Message:    err.Error(),
			Context:    fmt.Sprintf("File: %s", inputPath),
			Suggestion: suggestion,
		})
		rep.FileComplete(reporter.FileOutcome{
			InputFile:    inputPath,
			OutputFile:   outputPath,
			DynamicRange: res.Classification.Label(),
			Success:      false,
			Reason:       res.Reason,
			Elapsed:      res.Elapsed,
		})
		return res
	}

	if sameFile(inputPath, outputPath) {
		return fail(errors.NewPathError(fmt.Sprintf("output %s would overwrite its input", outputPath)),
			"Output Error", "Use a different output directory or a non-empty suffix")
	}

	meta, err := p.Prober.ProbeVideoStream(ctx, inputPath)
	probed := err == nil
	switch {
	case err == nil:
	case errors.IsCancelled(err):
		return fail(err, "Cancelled", "")
	case errors.IsKind(err, errors.KindNoVideoStream):
		return fail(err, "No Video Stream", "The file has no video track to normalize")
	default:
		// Unreadable metadata classifies like a missing tag; the engine
		// decides whether the file is usable at all.
		msg := fmt.Sprintf("%s: could not inspect (%v), processing as SDR", filepath.Base(inputPath), err)
		rep.Warning(msg)
		log.Warn("%s", msg)
		meta = ffprobe.StreamMetadata{}
	}

	res.Classification = dynrange.ClassifyMetadata(meta)
	res.Chain = filterchain.BuildForStream(res.Classification.Class, p.Profile, meta)

	rep.Classification(reporter.ClassificationSummary{
		InputFile:    inputPath,
		Transfer:     meta.TransferCharacteristic,
		ColorSpace:   meta.ColorSpace,
		Primaries:    meta.ColorPrimaries,
		PixelFormat:  meta.PixelFormat,
		DynamicRange: res.Classification.Label(),
		Assumed:      res.Classification.Source == dynrange.SourceAssumed,
		LooksHDR:     res.Classification.LooksHDR,
		Chain:        res.Chain.Summary(),
	})
	log.Info("%s: %s, chain %s", inputPath, res.Classification.Label(), res.Chain.Summary())
	if probed {
		p.warnAssumed(inputPath, res.Classification)
	}

	params := ffmpeg.TransformParams{
		InputPath:    inputPath,
		OutputPath:   outputPath,
		Chain:        res.Chain,
		Profile:      p.Profile,
		DurationSecs: meta.DurationSecs,
	}
	rep.TransformConfig(reporter.TransformConfigSummary{
		Encoder:     p.Profile.VideoCodec,
		Profile:     p.Profile.Profile,
		Preset:      p.Profile.Preset,
		Quality:     fmt.Sprintf("CRF %d", p.Profile.CRF),
		PixelFormat: p.Profile.PixelFormat,
		ColorSignal: fmt.Sprintf("%s/%s/%s (%s range)", p.Profile.ColorSpace, p.Profile.ColorTransfer, p.Profile.ColorPrimaries, p.Profile.ColorRange),
		AudioCodec:  p.Profile.AudioCodec,
		FilterGraph: ffmpeg.RenderFilterGraph(res.Chain),
		OutputFile:  outputPath,
	})
	rep.Verbose("ffmpeg " + strings.Join(ffmpeg.BuildCommand(params), " "))

	rep.TransformStarted(meta.DurationSecs)
	err = p.Engine.Transform(ctx, params, func(progress ffmpeg.Progress) {
		rep.TransformProgress(reporter.ProgressSnapshot{
			CurrentFrame: progress.CurrentFrame,
			Percent:      progress.Percent,
			Speed:        progress.Speed,
			FPS:          progress.FPS,
			ETA:          progress.ETA,
			Bitrate:      progress.Bitrate,
		})
	})
	if err != nil {
		if rmErr := util.RemoveIfExists(outputPath); rmErr != nil {
			log.Warn("Could not remove partial output %s: %v", outputPath, rmErr)
		}
		if errors.IsCancelled(err) {
			return fail(err, "Cancelled", "")
		}
		if !errors.IsKind(err, errors.KindTransform) {
			err = errors.NewTransformError(inputPath, err)
		}
		return fail(err, "Transform Error", "Check the run log for the ffmpeg output")
	}

	res.Success = true
	res.Elapsed = time.Since(start)
	outputSize, _ := util.GetFileSize(outputPath)
	log.Info("%s -> %s (%s)", inputPath, outputPath, util.FormatElapsed(res.Elapsed))

	rep.FileComplete(reporter.FileOutcome{
		InputFile:    inputPath,
		OutputFile:   outputPath,
		DynamicRange: res.Classification.Label(),
		Success:      true,
		Elapsed:      res.Elapsed,
		OutputSize:   outputSize,
	})
	return res
}

// warnAssumed surfaces classifications that fell back to SDR.
func (p *Processor) warnAssumed(inputPath string, c dynrange.Classification) {
	if c.Source != dynrange.SourceAssumed {
		return
	}
	name := filepath.Base(inputPath)
	tag := c.RawTag
	if tag == "" {
		tag = "none"
	}

	msg := fmt.Sprintf("%s: transfer characteristic %q not recognized, processing as SDR", name, tag)
	if c.LooksHDR {
		msg = fmt.Sprintf("%s: looks like HDR (BT.2020 or high bit depth) but transfer is %q; processing as SDR, colours may be off", name, tag)
	}
	p.reporter().Warning(msg)
	p.logger().Warn("%s", msg)
}

func (p *Processor) reporter() reporter.Reporter {
	if p.Reporter == nil {
		return reporter.NullReporter{}
	}
	return p.Reporter
}

func (p *Processor) logger() Logger {
	if p.Log == nil {
		return nopLogger{}
	}
	return p.Log
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Count returns the number of successful and failed results.
func Count(results []Result) (succeeded, failed int) {
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Outputs returns the output paths of the successful results, in order.
func Outputs(results []Result) []string {
	var out []string
	for _, r := range results {
		if r.Success {
			out = append(out, r.OutputPath)
		}
	}
	return out
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
