package reporter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func decodeEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestJSONReporterEvents(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.Classification(ClassificationSummary{InputFile: "a.mov", Transfer: "arib-std-b67", DynamicRange: "HDR (HLG)"})
	r.FileComplete(FileOutcome{InputFile: "a.mov", OutputFile: "a_normalized.mov", Success: true, Elapsed: 2 * time.Second})
	r.BatchComplete(BatchSummary{SuccessfulCount: 2, FailedCount: 1, TotalFiles: 3,
		Failures: []FileFailure{{Filename: "b.mp4", Reason: "transform failed"}}})
	r.VerificationComplete(VerificationSummary{PassedCount: 1, Rows: []VerificationRow{{File: "a_normalized.mov", Passed: true}}})
	r.Verbose("ignored")

	events := decodeEvents(t, &buf)
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}

	wantTypes := []string{"classification", "file_complete", "batch_complete", "verification_complete"}
	for i, want := range wantTypes {
		if events[i]["type"] != want {
			t.Errorf("event %d type = %v, want %s", i, events[i]["type"], want)
		}
		if _, ok := events[i]["timestamp"]; !ok {
			t.Errorf("event %d has no timestamp", i)
		}
	}

	if events[0]["transfer"] != "arib-std-b67" {
		t.Errorf("classification transfer = %v", events[0]["transfer"])
	}
	if events[2]["failed_count"] != float64(1) {
		t.Errorf("failed_count = %v", events[2]["failed_count"])
	}
	files := events[3]["files"].([]any)
	if mm := files[0].(map[string]any)["mismatches"]; mm == nil {
		t.Error("mismatches should encode as an empty list, not null")
	}
}

func TestJSONReporterThrottlesProgress(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.TransformStarted(60)
	r.TransformProgress(ProgressSnapshot{Percent: 10.1})
	r.TransformProgress(ProgressSnapshot{Percent: 10.5}) // same bucket, within interval
	r.TransformProgress(ProgressSnapshot{Percent: 11.0})

	var progress int
	for _, ev := range decodeEvents(t, &buf) {
		if ev["type"] == "transform_progress" {
			progress++
		}
	}
	if progress != 2 {
		t.Errorf("got %d progress events, want 2", progress)
	}
}

func TestTerminalReporterOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewTerminalReporterWithWriters(&out, &errOut, false, true)

	r.Classification(ClassificationSummary{InputFile: "clip.mp4", DynamicRange: "SDR (assumed, transfer=none)", Assumed: true, Chain: "encode"})
	r.TransformStarted(12)
	r.TransformProgress(ProgressSnapshot{Percent: 50})
	r.FileComplete(FileOutcome{InputFile: "/in/bad.mp4", Success: false, Reason: "no video stream"})
	r.VerificationComplete(VerificationSummary{
		PassedCount: 1,
		FailedCount: 1,
		Rows: []VerificationRow{
			{File: "/out/a_normalized.mp4", PixelFormat: "yuv420p", ColorSpace: "bt709", Transfer: "bt709", Primaries: "bt709", Passed: true},
			{File: "/out/b_normalized.mp4", PixelFormat: "yuv420p10le", Mismatches: []string{"pix_fmt"}},
		},
	})
	r.Verbose("debug detail")
	r.Error(ReporterError{Title: "Run failed", Message: "boom"})

	text := out.String()
	for _, want := range []string{
		"VIDEO", "Transfer:", "(none)", "SDR (assumed, transfer=none)",
		"transforming (00:00:12)",
		"bad.mp4: no video stream",
		"VERIFICATION", "a_normalized.mp4", "FAIL: pix_fmt", "1 of 2 outputs do not conform",
		"debug detail",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("terminal output missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(errOut.String(), "ERROR Run failed") {
		t.Errorf("stderr missing error: %q", errOut.String())
	}
}

type countingReporter struct {
	NullReporter
	warnings int
}

func (c *countingReporter) Warning(string) { c.warnings++ }

func TestCompositeReporterFansOut(t *testing.T) {
	a, b := &countingReporter{}, &countingReporter{}
	c := NewCompositeReporter(a, nil, b)

	c.Warning("x")
	c.Warning("y")

	if a.warnings != 2 || b.warnings != 2 {
		t.Errorf("warnings = %d, %d; want 2, 2", a.warnings, b.warnings)
	}
}

func TestRenderTable(t *testing.T) {
	got := renderTable([]string{"A", "B"}, [][]string{{"1"}, {"2", "3"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"A", "B", "1", "3", "╭"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("no headers should render nothing")
	}
}

func TestTerminalReporterNotInteractiveOnBuffer(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewTerminalReporter(&out, &errOut, false)
	if r.interactive {
		t.Error("a buffer should not be treated as a terminal")
	}

	r.TransformStarted(60)
	r.TransformProgress(ProgressSnapshot{Percent: 50})
	r.FileComplete(FileOutcome{InputFile: "a.mp4", OutputFile: "a_normalized.mp4", Success: true})
	if strings.Contains(errOut.String(), "%") && strings.Contains(errOut.String(), "\r") {
		t.Errorf("progress bar drawn without a terminal: %q", errOut.String())
	}
}
