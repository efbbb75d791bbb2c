package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/eucVeteran/video-normalization-pipeline/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	out         io.Writer
	errOut      io.Writer
	interactive bool
	verbose     bool

	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	maxPercent float32

	cyan    *color.Color
	green   *color.Color
	yellow  *color.Color
	red     *color.Color
	magenta *color.Color
	bold    *color.Color
	faint   *color.Color
	success *color.Color
}

// NewTerminalReporter creates a terminal reporter writing to out and errOut.
// The progress bar is only drawn when errOut is a terminal.
func NewTerminalReporter(out, errOut io.Writer, verbose bool) *TerminalReporter {
	return NewTerminalReporterWithWriters(out, errOut, isTerminal(errOut), verbose)
}

// NewTerminalReporterWithWriters creates a terminal reporter with custom writers.
func NewTerminalReporterWithWriters(out, errOut io.Writer, interactive, verbose bool) *TerminalReporter {
	return &TerminalReporter{
		out:         out,
		errOut:      errOut,
		interactive: interactive,
		verbose:     verbose,
		cyan:        color.New(color.FgCyan, color.Bold),
		green:       color.New(color.FgGreen),
		yellow:      color.New(color.FgYellow, color.Bold),
		red:         color.New(color.FgRed, color.Bold),
		magenta:     color.New(color.FgMagenta),
		bold:        color.New(color.Bold),
		faint:       color.New(color.Faint),
		success:     color.New(color.FgGreen, color.Bold),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) section(title string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Initialization(summary InitializationSummary) {
	r.section("RUN")
	const w = 8
	r.printLabel(w, "Input:", summary.InputDir)
	r.printLabel(w, "Output:", summary.OutputDir)
	r.printLabel(w, "Target:", summary.Profile)
	if summary.RunID != "" {
		r.printLabel(w, "Run ID:", summary.RunID)
	}
	if summary.LogFile != "" {
		r.printLabel(w, "Log:", summary.LogFile)
	}
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.section("BATCH")
	_, _ = fmt.Fprintf(r.out, "  Processing %d files -> %s\n", info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		_, _ = fmt.Fprintf(r.out, "  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	_, _ = fmt.Fprintf(r.out, "\nFile %s of %d: %s\n",
		r.bold.Sprint(context.CurrentFile),
		context.TotalFiles,
		filepath.Base(context.InputFile))
}

func (r *TerminalReporter) Classification(summary ClassificationSummary) {
	r.section("VIDEO")
	const w = 10
	r.printLabel(w, "File:", summary.InputFile)
	r.printLabel(w, "Transfer:", orNone(summary.Transfer))
	r.printLabel(w, "Matrix:", orNone(summary.ColorSpace))
	r.printLabel(w, "Primaries:", orNone(summary.Primaries))
	r.printLabel(w, "Pixels:", orNone(summary.PixelFormat))

	dynamic := summary.DynamicRange
	if summary.Assumed {
		dynamic = r.yellow.Sprint(dynamic)
	}
	r.printLabel(w, "Dynamic:", dynamic)
	r.printLabel(w, "Chain:", summary.Chain)
}

func (r *TerminalReporter) TransformConfig(summary TransformConfigSummary) {
	r.section("TRANSFORM")
	const w = 13
	r.printLabel(w, "Encoder:", fmt.Sprintf("%s (%s)", summary.Encoder, summary.Profile))
	r.printLabel(w, "Preset:", summary.Preset)
	r.printLabel(w, "Quality:", summary.Quality)
	r.printLabel(w, "Pixel format:", summary.PixelFormat)
	r.printLabel(w, "Colour:", summary.ColorSignal)
	r.printLabel(w, "Audio codec:", summary.AudioCodec)
	r.printLabel(w, "Output:", summary.OutputFile)
	if r.verbose {
		r.printLabel(w, "Filters:", summary.FilterGraph)
	}
}

func (r *TerminalReporter) TransformStarted(durationSecs float64) {
	r.finishProgress()

	if !r.interactive {
		_, _ = fmt.Fprintf(r.out, "  %s transforming (%s)\n", r.magenta.Sprint("›"), util.FormatDuration(durationSecs))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Normalizing [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) TransformProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := min(max(progress.Percent, 0), 100)
	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	r.progress.Describe(fmt.Sprintf("speed %.1fx, fps %.1f, eta %s",
		progress.Speed, progress.FPS, util.FormatElapsed(progress.ETA)))
}

func (r *TerminalReporter) FileComplete(outcome FileOutcome) {
	r.finishProgress()

	if !outcome.Success {
		_, _ = fmt.Fprintf(r.out, "  %s %s: %s\n", r.red.Sprint("✗"), filepath.Base(outcome.InputFile), outcome.Reason)
		return
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s -> %s (%s, %s)\n",
		r.green.Sprint("✓"),
		filepath.Base(outcome.InputFile),
		r.green.Sprint(outcome.OutputFile),
		util.FormatBytes(outcome.OutputSize),
		util.FormatElapsed(outcome.Elapsed))
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()

	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.section("BATCH SUMMARY")
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	if summary.FailedCount > 0 {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.red.Sprintf("%d failed", summary.FailedCount))
	}
	if summary.Cancelled {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.yellow.Sprint("Cancelled before the batch finished"))
	}
	_, _ = fmt.Fprintf(r.out, "  Time: %s\n", util.FormatElapsed(summary.TotalDuration))

	for _, f := range summary.Failures {
		_, _ = fmt.Fprintf(r.out, "  - %s: %s\n", f.Filename, f.Reason)
	}
}

func (r *TerminalReporter) VerificationComplete(summary VerificationSummary) {
	r.section("VERIFICATION")

	headers := []string{"File", "Pixel format", "Matrix", "Transfer", "Primaries", "Result"}
	rows := make([][]string, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		result := "pass"
		switch {
		case row.ProbeError != "":
			result = "probe failed"
		case !row.Passed:
			result = "FAIL: " + strings.Join(row.Mismatches, ", ")
		}
		rows = append(rows, []string{
			filepath.Base(row.File),
			orNone(row.PixelFormat),
			orNone(row.ColorSpace),
			orNone(row.Transfer),
			orNone(row.Primaries),
			result,
		})
	}
	_, _ = fmt.Fprintln(r.out, indent(renderTable(headers, rows, nil), "  "))

	if summary.FailedCount == 0 {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.success.Sprintf("All %d outputs conform", summary.PassedCount))
	} else {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.red.Sprintf("%d of %d outputs do not conform", summary.FailedCount, summary.PassedCount+summary.FailedCount))
	}
	for _, row := range summary.Rows {
		if row.ProbeError != "" {
			_, _ = fmt.Fprintf(r.out, "  %s %s: %s\n", r.red.Sprint("✗"), filepath.Base(row.File), row.ProbeError)
		}
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = fmt.Fprintf(r.out, "%s %s\n", r.success.Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.faint.Sprint(message))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
