package validation

import (
	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/ffprobe"
)

// Check names, matching the ffprobe field each one reads.
const (
	CheckPixelFormat    = "pix_fmt"
	CheckColorSpace     = "color_space"
	CheckColorTransfer  = "color_transfer"
	CheckColorPrimaries = "color_primaries"
	CheckCodec          = "codec_name"
)

// Check is one expected-versus-measured comparison.
type Check struct {
	Name     string
	Expected string
	Actual   string
	Passed   bool
}

// Report is the conformance outcome of one file.
type Report struct {
	Path string

	// Measured is nil when the file could not be probed.
	Measured   *ffprobe.StreamMetadata
	Checks     []Check
	ProbeError error
}

// Passed reports whether the file was probed and every check passed.
func (r Report) Passed() bool {
	if r.ProbeError != nil || r.Measured == nil {
		return false
	}
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Mismatches returns the names of the failed checks.
func (r Report) Mismatches() []string {
	var out []string
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c.Name)
		}
	}
	return out
}

// Err returns nil for a passing report, the probe error when probing failed,
// and a KindConformance error otherwise.
func (r Report) Err() error {
	if r.ProbeError != nil {
		return r.ProbeError
	}
	if r.Passed() {
		return nil
	}
	return errors.NewConformanceError(r.Path, r.Mismatches())
}

// Summary aggregates the reports of a set of files.
type Summary struct {
	Reports     []Report
	PassedCount int
	FailedCount int
}

// AllPassed reports whether every file conforms. An empty summary passes.
func (s Summary) AllPassed() bool {
	return s.FailedCount == 0
}

// Failures returns the reports that did not pass.
func (s Summary) Failures() []Report {
	var out []Report
	for _, r := range s.Reports {
		if !r.Passed() {
			out = append(out, r)
		}
	}
	return out
}

func (s *Summary) add(r Report) {
	s.Reports = append(s.Reports, r)
	if r.Passed() {
		s.PassedCount++
	} else {
		s.FailedCount++
	}
}
