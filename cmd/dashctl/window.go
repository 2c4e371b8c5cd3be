package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"dwelling-dashboard/internal/models"
)

var (
	windowLow    int
	windowHigh   int
	windowAsJSON bool
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Resolve a slider position into the window of every panel",
	Long: `Resolves slider positions [low, high) the way the dashboard does when the
range slider moves. Without --high the whole slider domain is used.`,
	RunE: runWindow,
}

func init() {
	windowCmd.Flags().IntVar(&windowLow, "low", 0, "first slider position")
	windowCmd.Flags().IntVar(&windowHigh, "high", -1, "slider position after the last one (default: slider max)")
	windowCmd.Flags().BoolVar(&windowAsJSON, "json", false, "print the view state as JSON")
	rootCmd.AddCommand(windowCmd)
}

func runWindow(cmd *cobra.Command, args []string) error {
	dash, err := loadDashboard(cmd.Context())
	if err != nil {
		return err
	}
	defer dash.Close()

	high := windowHigh
	if high < 0 {
		high = dash.Window.Domain()
	}

	state, err := dash.Window.Resolve(cmd.Context(), windowLow, high)
	if err != nil {
		return err
	}

	if windowAsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	printWindow(cmd.OutOrStdout(), state)
	return nil
}

func printWindow(out io.Writer, state models.ViewState) {
	fmt.Fprintf(out, "Slider [%d, %d)\n", state.Low, state.High)
	printLineWindow(out, models.PanelElectricity, state.Electricity)
	printLineWindow(out, models.PanelTemperature, state.Temperature)
	printLineWindow(out, models.PanelHumidity, state.Humidity)

	if state.Heatmap == nil {
		fmt.Fprintf(out, "  %-12s no data\n", models.PanelHeatmap)
		return
	}
	fmt.Fprintf(out, "  %-12s %s .. %s (days %d-%d)\n", models.PanelHeatmap,
		state.Heatmap.Start, state.Heatmap.End, state.Heatmap.StartIndex, state.Heatmap.EndIndex)
}

func printLineWindow(out io.Writer, panel string, w *models.Window) {
	if w == nil {
		fmt.Fprintf(out, "  %-12s no data\n", panel)
		return
	}
	fmt.Fprintf(out, "  %-12s %s .. %s (buckets %d-%d)\n", panel,
		w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), w.StartIndex, w.EndIndex)
}
