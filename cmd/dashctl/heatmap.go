package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dwelling-dashboard/internal/models"
)

var heatmapDay string

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Print the day by hour electricity matrix",
	Long: `Prints one line per day with its 24 hourly totals in kWh.
Use --day with an unpadded key such as 2019-1-5 to print a single day.`,
	RunE: runHeatmap,
}

func init() {
	heatmapCmd.Flags().StringVar(&heatmapDay, "day", "", "only print this day (e.g. 2019-1-5)")
	rootCmd.AddCommand(heatmapCmd)
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	dash, err := loadDashboard(cmd.Context())
	if err != nil {
		return err
	}
	defer dash.Close()

	days := dash.Dataset.Heatmap.Days
	if heatmapDay != "" {
		day, ok := dash.Dataset.Heatmap.Day(heatmapDay)
		if !ok {
			return fmt.Errorf("no day %q in the heatmap", heatmapDay)
		}
		days = []models.DayHours{day}
	}

	printHeatmap(cmd.OutOrStdout(), days)
	return nil
}

func printHeatmap(out io.Writer, days []models.DayHours) {
	if len(days) == 0 {
		fmt.Fprintln(out, "No electricity data")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', tabwriter.AlignRight)

	header := make([]string, 0, models.HoursPerDay+2)
	header = append(header, "DAY")
	for h := 0; h < models.HoursPerDay; h++ {
		header = append(header, fmt.Sprintf("%02d", h))
	}
	header = append(header, "TOTAL")
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")

	for _, day := range days {
		cells := make([]string, 0, models.HoursPerDay+2)
		cells = append(cells, day.Key)
		for _, v := range day.Hours {
			cells = append(cells, fmt.Sprintf("%.2f", v))
		}
		cells = append(cells, fmt.Sprintf("%.2f", day.Total()))
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	w.Flush()
}
