package main

import (
	"fmt"

	"github.com/spf13/cobra"

	vidnorm "github.com/eucVeteran/video-normalization-pipeline"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <output-dir>",
		Short: "Check that every video in a directory meets the target profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig("", args[0])
			if err != nil {
				return err
			}
			n, err := vidnorm.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			res, err := n.Verify(cmd.Context(), args[0], ctx.newReporter(cmd, nil))
			if err != nil {
				return err
			}
			if res.FailedCount > 0 {
				return fmt.Errorf("%d of %d output(s) do not conform", res.FailedCount, res.PassedCount+res.FailedCount)
			}
			return nil
		},
	}
}
