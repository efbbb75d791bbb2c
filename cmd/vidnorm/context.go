package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
	"github.com/eucVeteran/video-normalization-pipeline/internal/logging"
	"github.com/eucVeteran/video-normalization-pipeline/internal/reporter"
)

// commandContext carries the persistent flags shared by every subcommand.
type commandContext struct {
	configFlag  string
	jsonFlag    bool
	verboseFlag bool
}

// loadConfig builds the configuration from defaults and the config file.
// Command flags are applied on top by the caller.
func (c *commandContext) loadConfig(inputDir, outputDir string) (*config.Config, error) {
	cfg := config.NewConfig(inputDir, outputDir, "")

	file, path, _, err := config.LoadFile(strings.TrimSpace(c.configFlag))
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}
	if err := file.Apply(cfg); err != nil {
		return nil, errors.NewConfigError("invalid configuration file "+path, err)
	}
	return cfg, nil
}

// newReporter picks the NDJSON or terminal reporter, teeing into the run log
// when one is open.
func (c *commandContext) newReporter(cmd *cobra.Command, runLog *logging.RunLog) reporter.Reporter {
	var primary reporter.Reporter
	if c.jsonFlag {
		primary = reporter.NewJSONReporterWithWriter(cmd.OutOrStdout())
	} else {
		primary = reporter.NewTerminalReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), c.verboseFlag)
	}
	if runLog == nil {
		return primary
	}
	return reporter.NewCompositeReporter(primary, newLogReporter(runLog))
}
