package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/logging"
	"github.com/eucVeteran/video-normalization-pipeline/internal/util"
)

// Progress represents transform progress information.
type Progress struct {
	CurrentFrame uint64
	Percent      float32
	Speed        float32
	FPS          float32
	ETA          time.Duration
	Bitrate      string
	ElapsedSecs  float64
}

// ProgressCallback is called with progress updates during a transform.
type ProgressCallback func(Progress)

// Result contains the result of an ffmpeg run.
type Result struct {
	Success bool
	Error   error
	Stderr  string
}

var timeRegex = regexp.MustCompile(`time=(\d{2}:\d{2}:\d{2}\.?\d*)`)

// stderrTailLines is how much of ffmpeg's stderr ends up in a failure message.
const stderrTailLines = 8

// Engine runs ffmpeg.
type Engine struct {
	Binary string

	// LowPriority renices ffmpeg to the lowest scheduling priority once started.
	LowPriority bool
}

// NewEngine returns an Engine for the given binary (empty means "ffmpeg").
func NewEngine(binary string, lowPriority bool) *Engine {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Engine{Binary: binary, LowPriority: lowPriority}
}

// Transform normalizes one file. Failures come back as KindTransform errors
// carrying the command failure, or KindCancelled when ctx was cancelled.
func (e *Engine) Transform(ctx context.Context, params TransformParams, callback ProgressCallback) error {
	res := RunTransform(ctx, e.Binary, params, e.LowPriority, callback)
	if res.Success {
		return nil
	}
	if errors.IsCancelled(res.Error) {
		return res.Error
	}
	return errors.NewTransformError(params.InputPath, res.Error)
}

// RunTransform executes ffmpeg with progress reporting.
func RunTransform(ctx context.Context, binary string, params TransformParams, lowPriority bool, callback ProgressCallback) Result {
	args := BuildCommand(params)
	log := logging.Global().With("input", params.InputPath)
	log.Debug("running ffmpeg", "binary", binary, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, binary, args...)

	// Get stderr for progress parsing
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{
			Success: false,
			Error:   fmt.Errorf("failed to get stderr pipe: %w", err),
		}
	}

	// Start the process
	if err := cmd.Start(); err != nil {
		return Result{
			Success: false,
			Error:   errors.NewCommandStartError(binary, err),
		}
	}

	if lowPriority {
		if err := lowerPriority(cmd.Process.Pid); err != nil {
			log.Warn("could not lower ffmpeg priority", "pid", cmd.Process.Pid, "error", err)
		}
	}

	// Parse progress from stderr
	var stderrBuilder strings.Builder
	parseProgress(stderr, &stderrBuilder, params.DurationSecs, callback)

	// Wait for completion
	err = cmd.Wait()
	stderrStr := stderrBuilder.String()

	if err != nil {
		// Check for context cancellation
		if ctx.Err() != nil {
			return Result{
				Success: false,
				Error:   errors.NewCancelledError(ctx.Err()),
				Stderr:  stderrStr,
			}
		}
		log.Error("ffmpeg failed", "error", err)
		return Result{
			Success: false,
			Error:   errors.WrapExecError(binary, err, tailLines(stderrStr, stderrTailLines)),
			Stderr:  stderrStr,
		}
	}

	return Result{
		Success: true,
		Stderr:  stderrStr,
	}
}

// tailLines returns the last n non-empty lines of s, treating \r as a line break.
func tailLines(s string, n int) string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	var lines []string
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			lines = append(lines, strings.TrimSpace(f))
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// parseProgress reads ffmpeg stderr and parses progress updates.
func parseProgress(stderr io.Reader, stderrBuilder *strings.Builder, duration float64, callback ProgressCallback) {
	reader := bufio.NewReader(stderr)
	var lineBuf strings.Builder

	for {
		b, err := reader.ReadByte()
		if err != nil {
			if err != io.EOF {
				logging.Debug("error reading ffmpeg stderr", "error", err)
			}
			break
		}

		stderrBuilder.WriteByte(b)

		// Progress lines end with \r or \n
		if b == '\r' || b == '\n' {
			line := lineBuf.String()
			lineBuf.Reset()

			if callback != nil && strings.Contains(line, "frame=") {
				progress := parseProgressLine(line, duration)
				if progress != nil {
					callback(*progress)
				}
			}
		} else {
			lineBuf.WriteByte(b)
		}
	}
}

// parseProgressLine extracts progress information from an ffmpeg status line
// such as "frame=  240 fps= 48 q=28.0 size= 1024kB time=00:00:10.01 bitrate= 838.1kbits/s speed=1.98x".
func parseProgressLine(line string, duration float64) *Progress {
	p := &Progress{Bitrate: statusField(line, "bitrate=")}

	if matches := timeRegex.FindStringSubmatch(line); len(matches) >= 2 {
		if secs, ok := util.ParseFFmpegTime(matches[1]); ok {
			p.ElapsedSecs = secs
		}
	}
	if f, err := strconv.ParseUint(statusField(line, "frame="), 10, 64); err == nil {
		p.CurrentFrame = f
	}
	if f, err := strconv.ParseFloat(statusField(line, "fps="), 32); err == nil {
		p.FPS = float32(f)
	}
	if f, err := strconv.ParseFloat(strings.TrimSuffix(statusField(line, "speed="), "x"), 32); err == nil {
		p.Speed = float32(f)
	}

	if duration > 0 {
		p.Percent = min(float32(p.ElapsedSecs/duration*100), 100)
		if p.Speed > 0 {
			remaining := max(duration-p.ElapsedSecs, 0)
			p.ETA = time.Duration(remaining/float64(p.Speed)) * time.Second
		}
	}

	return p
}

// statusField returns the token following key, skipping ffmpeg's alignment padding.
func statusField(line, key string) string {
	idx := strings.Index(line, key)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(line[idx+len(key):], " ")
	if end := strings.IndexAny(rest, " \t\r\n"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
