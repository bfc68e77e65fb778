package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRecidivismCommand(ctx *commandContext) *cobra.Command {
	recidivismCmd := &cobra.Command{
		Use:   "recidivism",
		Short: "Recidivism analysis over stored incarceration periods",
	}
	recidivismCmd.AddCommand(newRecidivismReportCommand(ctx))
	return recidivismCmd
}

func newRecidivismReportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Aggregate release events per release-cohort year",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := ctx.newRunner(st).RecidivismReport(cmd.Context(), ctx.region())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(report) == 0 {
				fmt.Fprintln(out, "No release events in stored periods")
				return nil
			}

			rows := make([][]string, 0, len(report))
			for _, cohort := range report {
				rows = append(rows, []string{
					strconv.Itoa(cohort.Cohort),
					strconv.Itoa(cohort.Releases),
					strconv.Itoa(cohort.Recidivists),
					fmt.Sprintf("%.1f%%", cohort.Rate*100),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Cohort", "Releases", "Recidivists", "Rate"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight}))
			return nil
		},
	}
}
