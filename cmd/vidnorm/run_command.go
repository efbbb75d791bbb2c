package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	vidnorm "github.com/eucVeteran/video-normalization-pipeline"
	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/logging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input-dir> <output-dir>",
		Short: "Normalize every video in a directory",
		Long: `Normalize every video file directly inside <input-dir> into <output-dir>.

HDR sources (HLG or PQ) are tone-mapped to Rec.709; SDR sources are
conformed to it. Every output is H.264 High, yuv420p, BT.709, limited range,
with the audio copied. A failing file is reported and the batch continues.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, ctx, args[0], args[1])
		},
	}

	cmd.Flags().Bool("verify", false, "Check the outputs against the target profile after the run")
	cmd.Flags().Bool("responsive", false, "Run ffmpeg at the lowest scheduling priority")
	cmd.Flags().Bool("no-log", false, "Disable the run log file")
	cmd.Flags().StringP("log-dir", "l", "", "Log directory (defaults to OUTPUT/logs)")
	cmd.Flags().String("suffix", config.DefaultOutputSuffix, "Suffix appended to each output file name")
	cmd.Flags().String("ffmpeg", config.DefaultFFmpegPath, "ffmpeg binary")
	cmd.Flags().String("ffprobe", config.DefaultFFprobePath, "ffprobe binary")

	return cmd
}

// applyRunFlags overrides the loaded configuration with explicitly set flags.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	bools := []struct {
		name string
		dst  *bool
	}{
		{"verify", &cfg.VerifyAfterRun},
		{"responsive", &cfg.ResponsiveEncoding},
	}
	for _, b := range bools {
		if !flags.Changed(b.name) {
			continue
		}
		v, err := flags.GetBool(b.name)
		if err != nil {
			return err
		}
		*b.dst = v
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"log-dir", &cfg.LogDir},
		{"suffix", &cfg.OutputSuffix},
		{"ffmpeg", &cfg.FFmpegPath},
		{"ffprobe", &cfg.FFprobePath},
	}
	for _, f := range strs {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	cfg.LogDir = strings.TrimSpace(cfg.LogDir)
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.OutputDir, "logs")
	}
	return nil
}

func runNormalize(cmd *cobra.Command, ctx *commandContext, inputDir, outputDir string) error {
	cfg, err := ctx.loadConfig(inputDir, outputDir)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	noLog, err := cmd.Flags().GetBool("no-log")
	if err != nil {
		return err
	}

	n, err := vidnorm.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	// Nothing is written under outputDir until the input is known to be usable.
	if _, err := n.FindVideos(inputDir); err != nil {
		return err
	}

	runLog, err := logging.Setup(cfg.LogDir, ctx.verboseFlag, noLog)
	if err != nil {
		return err
	}
	defer runLog.Close()
	if runLog != nil {
		logging.Init(runLog.Level(), runLog.Writer())
	}

	rep := ctx.newReporter(cmd, runLog)
	res, err := n.Run(cmd.Context(), inputDir, outputDir, rep, runLog)
	if err != nil {
		runLog.Error("%v", err)
		return err
	}

	if res.FailedCount > 0 {
		return fmt.Errorf("%d of %d file(s) failed", res.FailedCount, res.TotalFiles)
	}
	if v := res.Verification; v != nil && v.FailedCount > 0 {
		return fmt.Errorf("%d of %d output(s) do not conform", v.FailedCount, v.PassedCount+v.FailedCount)
	}
	return nil
}
