package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPeriodsCommand(ctx *commandContext) *cobra.Command {
	periodsCmd := &cobra.Command{
		Use:   "periods",
		Short: "Incarceration period utilities",
	}
	periodsCmd.AddCommand(newPeriodsLoadCommand(ctx))
	periodsCmd.AddCommand(newPeriodsShowCommand(ctx))
	return periodsCmd
}

func newPeriodsLoadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load <period-file>",
		Short: "Load an incarceration period file, replacing each person's stored history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := ctx.newRunner(st).LoadPeriodsFile(cmd.Context(), ctx.region(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderKeyValues([][2]string{
				{"People", strconv.Itoa(report.People)},
				{"Periods", strconv.Itoa(report.Periods)},
			}))
			return nil
		},
	}
}

func newPeriodsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <person-external-id>",
		Short: "Show the stored incarceration periods for one person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			spans, err := st.PeriodsForPerson(cmd.Context(), ctx.region(), args[0])
			if err != nil {
				return err
			}
			if len(spans) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No periods stored for %s\n", args[0])
				return nil
			}

			rows := make([][]string, 0, len(spans))
			for _, span := range spans {
				release := "-"
				if !span.ReleaseDate.IsZero() {
					release = span.ReleaseDate.Format("2006-01-02")
				}
				rows = append(rows, []string{
					span.AdmissionDate.Format("2006-01-02"),
					string(span.AdmissionReason),
					release,
					string(span.ReleaseReason),
					span.Facility,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Admitted", "Admission Reason", "Released", "Release Reason", "Facility"},
				rows, nil))
			return nil
		},
	}
}
