package main

import (
	"strings"

	"github.com/eucVeteran/video-normalization-pipeline/internal/logging"
	"github.com/eucVeteran/video-normalization-pipeline/internal/reporter"
)

// logReporter mirrors the batch and verification outcomes into the run log.
// Per-file events are already logged by the processor.
type logReporter struct {
	reporter.NullReporter
	log *logging.RunLog
}

func newLogReporter(log *logging.RunLog) *logReporter {
	return &logReporter{log: log}
}

func (r *logReporter) BatchComplete(s reporter.BatchSummary) {
	for _, f := range s.Failures {
		r.log.Error("FAILED %s: %s", f.Filename, f.Reason)
	}
	if s.Cancelled {
		r.log.Warn("Batch cancelled after %d of %d file(s)", s.SuccessfulCount+s.FailedCount, s.TotalFiles)
	}
}

func (r *logReporter) VerificationComplete(s reporter.VerificationSummary) {
	for _, row := range s.Rows {
		switch {
		case row.ProbeError != "":
			r.log.Error("verify %s: %s", row.File, row.ProbeError)
		case row.Passed:
			r.log.Info("verify %s: pix_fmt=%s color_space=%s color_transfer=%s color_primaries=%s",
				row.File, row.PixelFormat, row.ColorSpace, row.Transfer, row.Primaries)
		default:
			r.log.Error("verify %s: mismatched %s", row.File, strings.Join(row.Mismatches, ", "))
		}
	}
}

func (r *logReporter) Verbose(message string) {
	r.log.Debug("%s", message)
}
