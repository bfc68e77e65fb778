package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show entity database counts for the configured region",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			summary, err := st.Summarize(cmd.Context(), ctx.region())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Region: %s\n", ctx.region())
			fmt.Fprintf(out, "Database: %s\n", st.Path())
			fmt.Fprint(out, renderKeyValues([][2]string{
				{"People", strconv.Itoa(summary.People)},
				{"Open bookings", strconv.Itoa(summary.OpenBookings)},
				{"Stored periods", strconv.Itoa(summary.Periods)},
			}))
			return nil
		},
	}
}
