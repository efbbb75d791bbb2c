package main

import (
	"fmt"

	"github.com/spf13/cobra"

	vidnorm "github.com/eucVeteran/video-normalization-pipeline"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>...",
		Short: "Show the dynamic range and filter chain chosen for each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig("", "")
			if err != nil {
				return err
			}
			n, err := vidnorm.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			results, err := n.Classify(cmd.Context(), args, ctx.newReporter(cmd, nil))
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					continue
				}
				if ctx.verboseFlag && !ctx.jsonFlag {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", r.FilterGraph)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) could not be classified", failed, len(results))
			}
			return nil
		},
	}
}
