package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// JSONReporter outputs one JSON object per line (NDJSON) for machine consumers.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v map[string]any) {
	v["timestamp"] = r.timestamp()

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Initialization(summary InitializationSummary) {
	r.write(map[string]any{
		"type":       "initialization",
		"run_id":     summary.RunID,
		"input_dir":  summary.InputDir,
		"output_dir": summary.OutputDir,
		"profile":    summary.Profile,
		"log_file":   summary.LogFile,
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write(map[string]any{
		"type":        "batch_started",
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"output_dir":  info.OutputDir,
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.write(map[string]any{
		"type":         "file_progress",
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
		"input_file":   context.InputFile,
	})
}

func (r *JSONReporter) Classification(summary ClassificationSummary) {
	r.write(map[string]any{
		"type":          "classification",
		"input_file":    summary.InputFile,
		"transfer":      summary.Transfer,
		"color_space":   summary.ColorSpace,
		"primaries":     summary.Primaries,
		"pixel_format":  summary.PixelFormat,
		"dynamic_range": summary.DynamicRange,
		"assumed":       summary.Assumed,
		"looks_hdr":     summary.LooksHDR,
		"chain":         summary.Chain,
	})
}

func (r *JSONReporter) TransformConfig(summary TransformConfigSummary) {
	r.write(map[string]any{
		"type":         "transform_config",
		"encoder":      summary.Encoder,
		"profile":      summary.Profile,
		"preset":       summary.Preset,
		"quality":      summary.Quality,
		"pixel_format": summary.PixelFormat,
		"color_signal": summary.ColorSignal,
		"audio_codec":  summary.AudioCodec,
		"filter_graph": summary.FilterGraph,
		"output_file":  summary.OutputFile,
	})
}

func (r *JSONReporter) TransformStarted(durationSecs float64) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]any{
		"type":             "transform_started",
		"duration_seconds": durationSecs,
	})
}

func (r *JSONReporter) TransformProgress(progress ProgressSnapshot) {
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent)
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]any{
		"type":          "transform_progress",
		"current_frame": progress.CurrentFrame,
		"percent":       progress.Percent,
		"speed":         progress.Speed,
		"fps":           progress.FPS,
		"eta_seconds":   int64(progress.ETA.Seconds()),
		"bitrate":       progress.Bitrate,
	})
}

func (r *JSONReporter) FileComplete(outcome FileOutcome) {
	r.write(map[string]any{
		"type":            "file_complete",
		"input_file":      outcome.InputFile,
		"output_file":     outcome.OutputFile,
		"dynamic_range":   outcome.DynamicRange,
		"success":         outcome.Success,
		"reason":          outcome.Reason,
		"elapsed_seconds": outcome.Elapsed.Seconds(),
		"output_size":     outcome.OutputSize,
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]any{
		"type":    "warning",
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]any{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	failures := make([]map[string]string, len(summary.Failures))
	for i, f := range summary.Failures {
		failures[i] = map[string]string{"file": f.Filename, "reason": f.Reason}
	}

	r.write(map[string]any{
		"type":                   "batch_complete",
		"successful_count":       summary.SuccessfulCount,
		"failed_count":           summary.FailedCount,
		"total_files":            summary.TotalFiles,
		"cancelled":              summary.Cancelled,
		"total_duration_seconds": int64(summary.TotalDuration.Seconds()),
		"failures":               failures,
	})
}

func (r *JSONReporter) VerificationComplete(summary VerificationSummary) {
	rows := make([]map[string]any, len(summary.Rows))
	for i, row := range summary.Rows {
		mismatches := row.Mismatches
		if mismatches == nil {
			mismatches = []string{}
		}
		rows[i] = map[string]any{
			"file":         row.File,
			"pixel_format": row.PixelFormat,
			"color_space":  row.ColorSpace,
			"transfer":     row.Transfer,
			"primaries":    row.Primaries,
			"passed":       row.Passed,
			"mismatches":   mismatches,
			"probe_error":  row.ProbeError,
		}
	}

	r.write(map[string]any{
		"type":         "verification_complete",
		"passed_count": summary.PassedCount,
		"failed_count": summary.FailedCount,
		"files":        rows,
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]any{
		"type":    "operation_complete",
		"message": message,
	})
}

// Verbose messages are only meant for humans.
func (r *JSONReporter) Verbose(string) {}
