package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var regionFlag string

	ctx := newCommandContext(&configFlag, &regionFlag)

	rootCmd := &cobra.Command{
		Use:           "docket",
		Short:         "Jail record reconciliation and recidivism reporting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&regionFlag, "region", "r", "", "Region override for this invocation")

	rootCmd.AddCommand(newIngestCommand(ctx))
	rootCmd.AddCommand(newPeriodsCommand(ctx))
	rootCmd.AddCommand(newRecidivismCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
