package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pergola/internal/api"
)

func newForecastCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Show the weighted commercial forecast",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report api.ReportSummary
			if err := ctx.client().get("/api/reports/forecast", &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Active deals: %s\n", strconv.Itoa(report.ActiveDeals))
			fmt.Fprintf(out, "Weighted total: %s\n\n", formatBRL(report.TotalForecast))

			if len(report.ByStage) > 0 {
				rows := make([][]string, 0, len(report.ByStage))
				for _, line := range report.ByStage {
					rows = append(rows, []string{line.Name, formatBRL(line.Value)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Stage", "Weighted"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
			}
			if len(report.ByOwner) > 0 {
				rows := make([][]string, 0, len(report.ByOwner))
				for _, line := range report.ByOwner {
					rows = append(rows, []string{line.Name, formatBRL(line.Value)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Owner", "Weighted"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
			}
			return nil
		},
	}
}
