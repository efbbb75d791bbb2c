package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/logging"
	"github.com/eucVeteran/video-normalization-pipeline/internal/reporter"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"run", "verify", "classify", "version"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "json", "verbose"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, appName+" version "+appVersion) {
		t.Errorf("version output = %q", out)
	}
}

func TestArgumentValidation(t *testing.T) {
	tests := [][]string{
		{"run"},
		{"run", "only-input"},
		{"verify"},
		{"classify"},
	}
	for _, args := range tests {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v: expected an argument error", args)
		}
	}
}

func TestVerifyEmptyDirectory(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "none.toml")
	_, err := execute(t, "--config", cfgPath, "verify", t.TempDir())
	if !errors.IsNoFilesFound(err) {
		t.Errorf("verify error = %v, want KindNoFilesFound", err)
	}
}

func TestRunLeavesOutputUntouchedOnBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input func(t *testing.T) string
		kind  errors.ErrorKind
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent") }, errors.KindPath},
		{"empty", func(t *testing.T) string { return t.TempDir() }, errors.KindNoFilesFound},
		{"no videos", func(t *testing.T) string {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
			return dir
		}, errors.KindNoFilesFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "none.toml")
			out := filepath.Join(t.TempDir(), "out")

			_, err := execute(t, "--config", cfgPath, "run", tt.input(t), out)
			if !errors.IsKind(err, tt.kind) {
				t.Fatalf("run error = %v, want kind %v", err, tt.kind)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Errorf("output directory was created (stat error %v)", err)
			}
		})
	}
}

func TestRunFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := "output_suffix = \"_sdr\"\nresponsive = true\nextensions = [\"mxf\"]\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := &commandContext{configFlag: cfgPath}
	cmd := newRunCommand(ctx)
	if err := cmd.ParseFlags([]string{"--suffix", "_x", "--verify"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg, err := ctx.loadConfig("in", "out")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		t.Fatalf("applyRunFlags() error = %v", err)
	}

	if cfg.OutputSuffix != "_x" {
		t.Errorf("OutputSuffix = %q, want flag value", cfg.OutputSuffix)
	}
	if !cfg.ResponsiveEncoding {
		t.Error("responsive from the config file was lost")
	}
	if !cfg.VerifyAfterRun {
		t.Error("--verify not applied")
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0] != ".mxf" {
		t.Errorf("Extensions = %v", cfg.Extensions)
	}
	if cfg.FFmpegPath != config.DefaultFFmpegPath {
		t.Errorf("FFmpegPath = %q, unset flag should keep the default", cfg.FFmpegPath)
	}
	if cfg.LogDir != filepath.Join("out", "logs") {
		t.Errorf("LogDir = %q, want out/logs", cfg.LogDir)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("crf = 18\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := &commandContext{configFlag: cfgPath}
	if _, err := ctx.loadConfig("in", "out"); !errors.IsKind(err, errors.KindConfig) {
		t.Errorf("loadConfig() error = %v, want KindConfig", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"cancelled", errors.NewCancelledError(context.Canceled), 130},
		{"wrapped cancel", fmt.Errorf("run: %w", errors.NewCancelledError(context.Canceled)), 130},
		{"no files", errors.NewNoFilesFoundError("in"), 2},
		{"bad config", errors.NewConfigError("bad crf", nil), 2},
		{"missing dir", errors.NewPathError("input directory does not exist: in"), 2},
		{"locked", errors.NewLockedError("out"), 2},
		{"transform", errors.NewTransformError("a.mp4", nil), 1},
		{"plain", fmt.Errorf("2 file(s) failed"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestLogReporter(t *testing.T) {
	runLog, err := logging.Setup(t.TempDir(), false, false)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	rep := newLogReporter(runLog)
	rep.BatchComplete(reporter.BatchSummary{
		TotalFiles:      2,
		SuccessfulCount: 1,
		FailedCount:     1,
		Failures:        []reporter.FileFailure{{Filename: "b.mp4", Reason: "transform failed"}},
	})
	rep.VerificationComplete(reporter.VerificationSummary{Rows: []reporter.VerificationRow{
		{File: "a_normalized.mp4", Passed: true, PixelFormat: "yuv420p"},
		{File: "c_normalized.mp4", Mismatches: []string{"color_transfer"}},
	}})
	if err := runLog.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(runLog.FilePath())
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{
		"[ERROR] FAILED b.mp4: transform failed",
		"[INFO] verify a_normalized.mp4: pix_fmt=yuv420p",
		"[ERROR] verify c_normalized.mp4: mismatched color_transfer",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("run log missing %q:\n%s", want, content)
		}
	}
}
