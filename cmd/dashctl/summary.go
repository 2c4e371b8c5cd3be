package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"dwelling-dashboard/internal/models"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print span, bucket count and min/mean/max of every series",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	dash, err := loadDashboard(cmd.Context())
	if err != nil {
		return err
	}
	defer dash.Close()

	printSummary(cmd.OutOrStdout(), dash.Dataset)
	return nil
}

func printSummary(out io.Writer, ds *models.Dataset) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tAGG\tFIRST\tLAST\tBUCKETS\tFIELD\tMISSING\tMIN\tMEAN\tMAX")

	for _, source := range []string{models.SourceIndoor, models.SourceOutdoor, models.SourceElectricity} {
		s, _ := ds.Series(source)
		if s.Empty() {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t0\t-\t-\t-\t-\t-\n", source, s.Aggregation)
			continue
		}

		first := s.Index[0].Format(time.RFC3339)
		last := s.Index[s.Len()-1].Format(time.RFC3339)
		for i, field := range s.Fields {
			observed := make([]float64, 0, s.Len())
			for _, v := range s.Columns[i] {
				if !models.Missing(v) {
					observed = append(observed, v)
				}
			}

			if len(observed) == 0 {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\t-\t-\t-\n",
					source, s.Aggregation, first, last, s.Len(), field, s.Len())
				continue
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\t%.2f\t%.2f\t%.2f\n",
				source, s.Aggregation, first, last, s.Len(), field, s.Len()-len(observed),
				floats.Min(observed), stat.Mean(observed, nil), floats.Max(observed))
		}
	}
	w.Flush()

	fmt.Fprintf(out, "\nHeatmap: %d days of %s\n", ds.Heatmap.Len(), ds.Heatmap.Field)
}
