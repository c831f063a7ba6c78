package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bikeshare/internal/backend"
	"bikeshare/internal/core"
	"bikeshare/internal/dataset"
	"bikeshare/internal/services"
)

var (
	summaryStart  string
	summaryEnd    string
	summarySource string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard metrics for a date range",
	Long: `Loads the dataset from the chosen source and prints the three headline
metrics with the hourly and weekday tables. Dates are YYYY-MM-DD and default
to the dataset bounds.`,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryStart, "start", "", "first day of the range")
	summaryCmd.Flags().StringVar(&summaryEnd, "end", "", "last day of the range")
	summaryCmd.Flags().StringVar(&summarySource, "source", "", "data source: csv, file, sqlite or sheets (default is DATA_SOURCE)")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	var r core.DateRange
	var err error
	if summaryStart != "" {
		if r.Start, err = core.ParseDate(summaryStart); err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
	}
	if summaryEnd != "" {
		if r.End, err = core.ParseDate(summaryEnd); err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
	}

	cfg, err := backend.FromAppConfig(appConfig)
	if err != nil {
		return err
	}
	if summarySource != "" {
		cfg.Type = backend.SourceType(summarySource)
	}

	ctx := cmd.Context()
	src, err := backend.NewFactory(logger).CreateSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	ds, err := dataset.Load(ctx, src.Source)
	if err != nil {
		return err
	}

	d, err := services.NewDashboardService(ds, services.DashboardOptions{CacheSize: 1, CacheTTL: time.Minute}).Render(ctx, r)
	if err != nil {
		return err
	}
	printDashboard(cmd.OutOrStdout(), d)
	return nil
}

func printDashboard(w io.Writer, d *core.Dashboard) {
	fmt.Fprintf(w, "Range: %s to %s (%s records)\n", d.Start, d.End, humanize.Comma(int64(d.Summary.Records)))
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "%-24s %14s\n", "Total Bike Share", humanize.Comma(d.Summary.Total))
	fmt.Fprintf(w, "%-24s %14s\n", "Total Registered Users", humanize.Comma(d.Summary.Registered))
	fmt.Fprintf(w, "%-24s %14s\n", "Total Casual Users", humanize.Comma(d.Summary.Casual))

	if len(d.Hourly) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-6s %14s %14s\n", "Hour", "Registered", "Casual")
		fmt.Fprintln(w, "----------------------------------------")
		for _, h := range d.Hourly {
			fmt.Fprintf(w, "%-6d %14.2f %14.2f\n", h.Hour, h.MeanRegistered, h.MeanCasual)
		}
	}

	if len(d.Weekday) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-10s %14s\n", "Weekday", "Total")
		fmt.Fprintln(w, "----------------------------------------")
		for _, wd := range d.Weekday {
			fmt.Fprintf(w, "%-10s %14s\n", wd.Label, humanize.Comma(wd.Total))
		}
	}
}
