package ffmpeg

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/logging"
)

func TestParseProgressLine(t *testing.T) {
	line := "frame=  240 fps= 48 q=28.0 size=    1024kB time=00:00:10.00 bitrate= 838.1kbits/s speed=2.00x"

	p := parseProgressLine(line, 40)

	if p.CurrentFrame != 240 {
		t.Errorf("CurrentFrame = %d, want 240", p.CurrentFrame)
	}
	if p.FPS != 48 {
		t.Errorf("FPS = %v, want 48", p.FPS)
	}
	if p.Speed != 2 {
		t.Errorf("Speed = %v, want 2", p.Speed)
	}
	if p.Bitrate != "838.1kbits/s" {
		t.Errorf("Bitrate = %q", p.Bitrate)
	}
	if p.ElapsedSecs != 10 {
		t.Errorf("ElapsedSecs = %v, want 10", p.ElapsedSecs)
	}
	if p.Percent != 25 {
		t.Errorf("Percent = %v, want 25", p.Percent)
	}
	if p.ETA != 15*time.Second {
		t.Errorf("ETA = %v, want 15s", p.ETA)
	}
}

func TestParseProgressLineUnknownDuration(t *testing.T) {
	p := parseProgressLine("frame=10 fps=0.0 time=00:00:01.00 speed=N/A", 0)
	if p.Percent != 0 || p.ETA != 0 || p.Speed != 0 {
		t.Errorf("expected zero percent/eta/speed, got %+v", p)
	}
	if p.CurrentFrame != 10 {
		t.Errorf("CurrentFrame = %d, want 10", p.CurrentFrame)
	}
}

func TestParseProgressLineClampsPercent(t *testing.T) {
	p := parseProgressLine("frame=1 time=00:01:00.00 speed=1x", 30)
	if p.Percent != 100 {
		t.Errorf("Percent = %v, want 100", p.Percent)
	}
	if p.ETA != 0 {
		t.Errorf("ETA = %v, want 0", p.ETA)
	}
}

func TestParseProgressCallsBack(t *testing.T) {
	stderr := "Input #0, mov\nframe=   10 fps=10 time=00:00:01.00 speed=1x\rframe=   20 fps=10 time=00:00:02.00 speed=1x\r"
	var updates []Progress
	var sb strings.Builder

	parseProgress(strings.NewReader(stderr), &sb, 4, func(p Progress) { updates = append(updates, p) })

	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	if updates[1].Percent != 50 {
		t.Errorf("second update Percent = %v, want 50", updates[1].Percent)
	}
	if sb.String() != stderr {
		t.Error("stderr should be captured verbatim")
	}
}

func TestTailLines(t *testing.T) {
	got := tailLines("a\nb\r\n\nc\rd\n", 2)
	if got != "c\nd" {
		t.Errorf("tailLines() = %q, want %q", got, "c\nd")
	}
}

func TestEngineTransformMissingBinary(t *testing.T) {
	e := NewEngine(filepath.Join(t.TempDir(), "no-such-ffmpeg"), false)

	err := e.Transform(context.Background(), TransformParams{
		InputPath:  "in.mp4",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		Profile:    config.DefaultTargetProfile(),
	}, nil)
	if err == nil {
		t.Fatal("Transform() expected error for a missing binary")
	}
	if !errors.IsKind(err, errors.KindTransform) {
		t.Errorf("error kind = %v, want KindTransform", err)
	}
}

func TestNewEngineDefaultsBinary(t *testing.T) {
	if got := NewEngine("", true); got.Binary != "ffmpeg" || !got.LowPriority {
		t.Errorf("NewEngine() = %+v", got)
	}
}

func TestRunTransformLogsFailureWithInput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a shell script stand-in for ffmpeg")
	}
	bin := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	prev := logging.Global()
	t.Cleanup(func() { logging.SetGlobal(prev) })
	var buf bytes.Buffer
	logging.Init(slog.LevelDebug, &buf)

	res := RunTransform(context.Background(), bin, TransformParams{
		InputPath:  "clip.mp4",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		Profile:    config.DefaultTargetProfile(),
	}, false, nil)
	if res.Success {
		t.Fatal("RunTransform() succeeded with a failing binary")
	}
	if !strings.Contains(res.Stderr, "Invalid data") {
		t.Errorf("Stderr = %q", res.Stderr)
	}

	out := buf.String()
	for _, want := range []string{"running ffmpeg", "ffmpeg failed", "input=clip.mp4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
