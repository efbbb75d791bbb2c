package main

import (
	"github.com/spf13/cobra"
)

const (
	appName    = "vidnorm"
	appVersion = "0.1.0"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Normalize HDR and SDR videos to Rec.709 SDR H.264",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path (default ~/.config/vidnorm/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&ctx.jsonFlag, "json", false, "Emit NDJSON progress events on stdout")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verboseFlag, "verbose", "v", false, "Enable verbose output for troubleshooting")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newClassifyCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(appName + " version " + appVersion + "\n"))
			return err
		},
	}
}
