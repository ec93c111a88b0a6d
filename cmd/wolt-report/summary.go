package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"wolt-report-service/internal/aggregate"
	"wolt-report-service/internal/app"
	"wolt-report-service/internal/report"
)

type summaryCmd struct {
	pipelineFlags
	top int
}

func newSummaryCmd() *cobra.Command {
	sc := &summaryCmd{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print headline figures and top venues and dishes",
		RunE:  sc.run,
	}
	sc.register(cmd)
	cmd.Flags().IntVar(&sc.top, "top", 5, "Number of venues and dishes to list")
	return cmd
}

func (sc *summaryCmd) run(cmd *cobra.Command, _ []string) error {
	log, err := cliLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	pipeline, err := app.PipelineConfig(sc.config())
	if err != nil {
		return err
	}
	docs, err := readInputs(sc.inputs, cmd.InOrStdin())
	if err != nil {
		return err
	}

	// Prepare stops before rendering, so no composer or store is needed.
	svc := report.NewService(pipeline, nil, nil, log)
	prepared, err := svc.Prepare(cmd.Context(), docs)
	if err != nil {
		return err
	}
	writeSummary(cmd.OutOrStdout(), prepared, sc.top)
	return nil
}

func writeSummary(out io.Writer, prepared report.Prepared, top int) {
	res := prepared.Result
	head := res.Headline()

	fmt.Fprintf(out, "Order Count:   %d\n", head.OrderCount)
	fmt.Fprintf(out, "Total Expenses: %s\n", aggregate.JoinAmounts(head.Totals))
	fmt.Fprintf(out, "Average Order: %s\n", aggregate.JoinAmounts(head.Averages))

	writeRanked(out, "Top venues", res.TopVenues(top))
	writeRanked(out, "Top dishes", res.TopItems(top))

	if ids := prepared.SkippedIDs(); len(ids) > 0 {
		fmt.Fprintf(out, "\nSkipped (unknown timezone): %d\n", len(ids))
		for _, id := range ids {
			fmt.Fprintf(out, "  %s\n", id)
		}
	}
}

func writeRanked(out io.Writer, title string, rows []aggregate.Ranked) {
	fmt.Fprintf(out, "\n%s:\n", title)
	if len(rows) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for i, r := range rows {
		fmt.Fprintf(out, "  %d. %s  %s\n", i+1, r.Name, r.Amount())
	}
}
