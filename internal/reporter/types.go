// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// InitializationSummary describes a run before any file is touched.
type InitializationSummary struct {
	RunID     string
	InputDir  string
	OutputDir string
	Profile   string
	LogFile   string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
	InputFile   string
}

// ClassificationSummary is the probed colour signalling of one input and the
// class and chain chosen for it.
type ClassificationSummary struct {
	InputFile    string
	Transfer     string
	ColorSpace   string
	Primaries    string
	PixelFormat  string
	DynamicRange string
	Assumed      bool
	LooksHDR     bool
	Chain        string
}

// TransformConfigSummary contains the ffmpeg settings for one file.
type TransformConfigSummary struct {
	Encoder     string
	Profile     string
	Preset      string
	Quality     string
	PixelFormat string
	ColorSignal string
	AudioCodec  string
	FilterGraph string
	OutputFile  string
}

// ProgressSnapshot contains transform progress information.
type ProgressSnapshot struct {
	CurrentFrame uint64
	Percent      float32
	Speed        float32
	FPS          float32
	ETA          time.Duration
	Bitrate      string
}

// FileOutcome is the result of one file of the batch.
type FileOutcome struct {
	InputFile    string
	OutputFile   string
	DynamicRange string
	Success      bool
	Reason       string
	Elapsed      time.Duration
	OutputSize   uint64
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount int
	FailedCount     int
	TotalFiles      int
	TotalDuration   time.Duration
	Cancelled       bool
	Failures        []FileFailure
}

// FileFailure names a failed file and why.
type FileFailure struct {
	Filename string
	Reason   string
}

// VerificationSummary contains the conformance results of a set of outputs.
type VerificationSummary struct {
	Rows        []VerificationRow
	PassedCount int
	FailedCount int
}

// VerificationRow is the measured metadata of one output.
type VerificationRow struct {
	File        string
	PixelFormat string
	ColorSpace  string
	Transfer    string
	Primaries   string
	Passed      bool
	Mismatches  []string
	ProbeError  string
}
