// Package vidnorm normalizes a directory of videos to a single Rec.709 SDR
// H.264 target, tone-mapping HDR (HLG or PQ) sources on the way.
//
// Basic usage:
//
//	n, err := vidnorm.New(vidnorm.WithVerifyAfterRun())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := n.Run(ctx, "in/", "out/", nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("normalized %d of %d\n", result.SuccessfulCount, result.TotalFiles)
package vidnorm

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/discovery"
	"github.com/eucVeteran/video-normalization-pipeline/internal/dynrange"
	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/ffmpeg"
	"github.com/eucVeteran/video-normalization-pipeline/internal/ffprobe"
	"github.com/eucVeteran/video-normalization-pipeline/internal/filterchain"
	"github.com/eucVeteran/video-normalization-pipeline/internal/lock"
	"github.com/eucVeteran/video-normalization-pipeline/internal/logging"
	"github.com/eucVeteran/video-normalization-pipeline/internal/processing"
	"github.com/eucVeteran/video-normalization-pipeline/internal/reporter"
	"github.com/eucVeteran/video-normalization-pipeline/internal/util"
	"github.com/eucVeteran/video-normalization-pipeline/internal/validation"
)

// Reporter receives progress events from a run.
type Reporter = reporter.Reporter

// Normalizer is the main entry point.
type Normalizer struct {
	config *config.Config

	prober   processing.Prober
	engine   processing.Engine
	analyzer validation.MediaAnalyzer
}

// Option configures the normalizer.
type Option func(*config.Config)

// New creates a Normalizer with the given options.
func New(opts ...Option) (*Normalizer, error) {
	cfg := config.NewConfig("", "", "")

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}

	return &Normalizer{
		config:   cfg,
		prober:   ffprobe.New(cfg.FFprobePath),
		engine:   ffmpeg.NewEngine(cfg.FFmpegPath, cfg.ResponsiveEncoding),
		analyzer: validation.NewDefaultAnalyzer(cfg.FFprobePath),
	}, nil
}

// NewFromConfig creates a Normalizer from an already assembled configuration,
// as the CLI does after merging the config file and flags.
func NewFromConfig(cfg *config.Config) (*Normalizer, error) {
	c := *cfg
	return New(func(dst *config.Config) { *dst = c })
}

// WithFFmpegPath sets the ffmpeg binary.
func WithFFmpegPath(path string) Option {
	return func(c *config.Config) {
		c.FFmpegPath = path
	}
}

// WithFFprobePath sets the ffprobe binary.
func WithFFprobePath(path string) Option {
	return func(c *config.Config) {
		c.FFprobePath = path
	}
}

// WithOutputSuffix sets the suffix appended to each output's file stem.
func WithOutputSuffix(suffix string) Option {
	return func(c *config.Config) {
		c.OutputSuffix = suffix
	}
}

// WithExtensions replaces the input extensions picked up by discovery.
func WithExtensions(exts ...string) Option {
	return func(c *config.Config) {
		c.Extensions = append([]string(nil), exts...)
	}
}

// WithResponsive runs ffmpeg at the lowest scheduling priority.
func WithResponsive() Option {
	return func(c *config.Config) {
		c.ResponsiveEncoding = true
	}
}

// WithVerifyAfterRun checks the outputs of a run against the target profile.
func WithVerifyAfterRun() Option {
	return func(c *config.Config) {
		c.VerifyAfterRun = true
	}
}

// Profile returns the target every output is normalized to.
func (n *Normalizer) Profile() config.TargetProfile {
	return config.DefaultTargetProfile()
}

// FileResult is the outcome of one input file.
type FileResult struct {
	InputFile    string
	OutputFile   string
	DynamicRange string
	Chain        string
	Success      bool
	Reason       string
}

// RunResult contains the result of a batch run.
type RunResult struct {
	Files           []FileResult
	SuccessfulCount int
	FailedCount     int
	TotalFiles      int
	Cancelled       bool

	// Verification is nil unless verification ran.
	Verification *VerifyResult
}

// OK reports whether every discovered file was normalized and, when
// verification ran, every output conforms.
func (r *RunResult) OK() bool {
	if r.Cancelled || r.FailedCount > 0 || r.SuccessfulCount != r.TotalFiles {
		return false
	}
	return r.Verification == nil || r.Verification.FailedCount == 0
}

// VerifyResult contains the conformance results of a set of outputs.
type VerifyResult struct {
	Files       []VerifiedFile
	PassedCount int
	FailedCount int
}

// VerifiedFile is the measured signalling of one output.
type VerifiedFile struct {
	File        string
	PixelFormat string
	ColorSpace  string
	Transfer    string
	Primaries   string
	Passed      bool
	Mismatches  []string
	Err         error
}

// Run normalizes every video file directly inside inputDir into outputDir.
// Per-file failures do not stop the batch and are reported in the result;
// the returned error covers setup problems and cancellation.
func (n *Normalizer) Run(ctx context.Context, inputDir, outputDir string, rep Reporter, log *logging.RunLog) (*RunResult, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	cfg := *n.config
	cfg.InputDir = inputDir
	cfg.OutputDir = outputDir
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}

	found, err := discovery.FindVideoFilesWithLogging(inputDir, cfg.ExtensionSet(), log)
	if err != nil {
		return nil, err
	}

	if err := util.EnsureDirectory(outputDir); err != nil {
		return nil, errors.NewIOError("failed to create output directory "+outputDir, err)
	}
	if err := util.EnsureDirectoryWritable(outputDir); err != nil {
		return nil, errors.NewIOError("output directory is not writable", err)
	}

	dirLock, err := lock.Acquire(outputDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := dirLock.Release(); err != nil {
			log.Warn("Failed to release lock %s: %v", dirLock.Path(), err)
		}
	}()

	profile := n.Profile()
	rep.Initialization(reporter.InitializationSummary{
		RunID:     log.RunID(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		Profile:   profile.String(),
		LogFile:   log.FilePath(),
	})

	proc := &processing.Processor{
		Prober:   n.prober,
		Engine:   n.engine,
		Profile:  profile,
		Reporter: rep,
		Log:      log,
		Suffix:   cfg.OutputSuffix,
	}
	results := proc.ProcessAll(ctx, found.Files, outputDir)

	res := &RunResult{TotalFiles: len(found.Files)}
	res.SuccessfulCount, res.FailedCount = processing.Count(results)
	logging.Info("batch finished", "files", res.TotalFiles, "succeeded", res.SuccessfulCount, "failed", res.FailedCount)
	for _, r := range results {
		res.Files = append(res.Files, FileResult{
			InputFile:    r.InputPath,
			OutputFile:   r.OutputPath,
			DynamicRange: r.Classification.Label(),
			Chain:        r.Chain.Summary(),
			Success:      r.Success,
			Reason:       r.Reason,
		})
	}

	if ctx.Err() != nil {
		res.Cancelled = true
		return res, errors.NewCancelledError(ctx.Err())
	}

	if cfg.VerifyAfterRun {
		summary, err := validation.VerifyFiles(ctx, n.analyzer, processing.Outputs(results), profile)
		res.Verification = toVerifyResult(summary)
		rep.VerificationComplete(toVerificationSummary(summary))
		log.Info("Verification: %d passed, %d failed", summary.PassedCount, summary.FailedCount)
		if err != nil {
			res.Cancelled = true
			return res, err
		}
	}

	return res, nil
}

// Verify checks every video file directly inside dir against the target
// profile. It only reads files.
func (n *Normalizer) Verify(ctx context.Context, dir string, rep Reporter) (*VerifyResult, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	summary, err := validation.VerifyDirectory(ctx, n.analyzer, dir, n.config.ExtensionSet(), n.Profile())
	if err != nil && len(summary.Reports) == 0 {
		return nil, err
	}
	rep.VerificationComplete(toVerificationSummary(summary))
	return toVerifyResult(summary), err
}

// Classification is the dynamic-range decision for one file.
type Classification struct {
	File         string
	Metadata     ffprobe.StreamMetadata
	DynamicRange string
	HDR          bool
	Assumed      bool
	LooksHDR     bool
	Chain        string
	FilterGraph  string
	Err          error
}

// Classify probes each path and reports the class and chain that a run would
// use, without transforming anything.
func (n *Normalizer) Classify(ctx context.Context, paths []string, rep Reporter) ([]Classification, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	profile := n.Profile()
	out := make([]Classification, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			return out, errors.NewCancelledError(ctx.Err())
		}

		meta, err := n.prober.ProbeVideoStream(ctx, path)
		if err != nil {
			out = append(out, Classification{File: path, Err: err})
			rep.Error(reporter.ReporterError{
				Title:   "Probe Error",
				Message: err.Error(),
				Context: fmt.Sprintf("File: %s", path),
			})
			continue
		}

		c := dynrange.ClassifyMetadata(meta)
		chain := filterchain.BuildForStream(c.Class, profile, meta)
		out = append(out, Classification{
			File:         path,
			Metadata:     meta,
			DynamicRange: c.Label(),
			HDR:          c.Class.IsHDR(),
			Assumed:      c.Source == dynrange.SourceAssumed,
			LooksHDR:     c.LooksHDR,
			Chain:        chain.Summary(),
			FilterGraph:  ffmpeg.RenderFilterGraph(chain),
		})
		rep.Classification(reporter.ClassificationSummary{
			InputFile:    path,
			Transfer:     meta.TransferCharacteristic,
			ColorSpace:   meta.ColorSpace,
			Primaries:    meta.ColorPrimaries,
			PixelFormat:  meta.PixelFormat,
			DynamicRange: c.Label(),
			Assumed:      c.Source == dynrange.SourceAssumed,
			LooksHDR:     c.LooksHDR,
			Chain:        chain.Summary(),
		})
	}
	return out, nil
}

// FindVideos lists the video files a run over dir would process.
func (n *Normalizer) FindVideos(dir string) ([]string, error) {
	found, err := discovery.FindVideoFiles(dir, n.config.ExtensionSet())
	if err != nil {
		return nil, err
	}
	return found.Files, nil
}

func toVerifyResult(s validation.Summary) *VerifyResult {
	res := &VerifyResult{PassedCount: s.PassedCount, FailedCount: s.FailedCount}
	for _, r := range s.Reports {
		f := VerifiedFile{
			File:       r.Path,
			Passed:     r.Passed(),
			Mismatches: r.Mismatches(),
			Err:        r.Err(),
		}
		if r.Measured != nil {
			f.PixelFormat = r.Measured.PixelFormat
			f.ColorSpace = r.Measured.ColorSpace
			f.Transfer = r.Measured.TransferCharacteristic
			f.Primaries = r.Measured.ColorPrimaries
		}
		res.Files = append(res.Files, f)
	}
	return res
}

func toVerificationSummary(s validation.Summary) reporter.VerificationSummary {
	out := reporter.VerificationSummary{PassedCount: s.PassedCount, FailedCount: s.FailedCount}
	for _, r := range s.Reports {
		row := reporter.VerificationRow{
			File:       filepath.Base(r.Path),
			Passed:     r.Passed(),
			Mismatches: r.Mismatches(),
		}
		if r.Measured != nil {
			row.PixelFormat = r.Measured.PixelFormat
			row.ColorSpace = r.Measured.ColorSpace
			row.Transfer = r.Measured.TransferCharacteristic
			row.Primaries = r.Measured.ColorPrimaries
		}
		if r.ProbeError != nil {
			row.ProbeError = r.ProbeError.Error()
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
