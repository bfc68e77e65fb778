package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <record-file>",
		Short: "Reconcile a scraped record file against the entity database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := ctx.newRunner(st).IngestFile(cmd.Context(), ctx.region(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch %s complete\n", report.BatchID)
			fmt.Fprint(out, renderKeyValues([][2]string{
				{"People", strconv.Itoa(report.People)},
				{"Matched", strconv.Itoa(report.Matched)},
				{"Errors", strconv.Itoa(report.Errors)},
				{"Orphaned", strconv.Itoa(report.Orphaned)},
			}))
			if report.Errors > 0 {
				return fmt.Errorf("%d of %d people failed matching", report.Errors, report.People)
			}
			return nil
		},
	}
}
