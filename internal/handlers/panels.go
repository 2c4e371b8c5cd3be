package handlers

import (
	"time"

	"dwelling-dashboard/internal/models"
)

// PanelDescriptor describes one chart of the dashboard
type PanelDescriptor struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	YAxisTitle string   `json:"y_axis_title"`
	Colorbar   string   `json:"colorbar_title,omitempty"`
	Traces     []string `json:"traces"`
}

// Trace is one line of a line panel. Missing values are null.
type Trace struct {
	Name string     `json:"name"`
	X    []string   `json:"x"`
	Y    []*float64 `json:"y"`
}

// LinePanel is the data of a line panel
type LinePanel struct {
	PanelDescriptor
	Traces []Trace `json:"data"`
}

// HeatmapPanel is the data of the heatmap: Z[hour][day]
type HeatmapPanel struct {
	PanelDescriptor
	X []string    `json:"x"`
	Y []int       `json:"y"`
	Z [][]float64 `json:"z"`
}

// SeriesResponse is a normalized series with its fields keyed by name
type SeriesResponse struct {
	Source      string                `json:"source"`
	Aggregation string                `json:"aggregation"`
	Cadence     string                `json:"cadence"`
	Index       []string              `json:"index"`
	Fields      map[string][]*float64 `json:"fields"`
}

var panelDescriptors = []PanelDescriptor{
	{ID: models.PanelElectricity, Kind: "line", YAxisTitle: "Electricity (kWh)", Traces: []string{"Electricity"}},
	{ID: models.PanelHeatmap, Kind: "heatmap", YAxisTitle: "Day Hour", Colorbar: "kWh", Traces: []string{"Electricity"}},
	{ID: models.PanelTemperature, Kind: "line", YAxisTitle: "Temperature °C", Traces: []string{"Indoor", "Outdoor"}},
	{ID: models.PanelHumidity, Kind: "line", YAxisTitle: "Relative Humidity %", Traces: []string{"Indoor", "Outdoor"}},
}

func findPanel(id string) (PanelDescriptor, bool) {
	for _, p := range panelDescriptors {
		if p.ID == id {
			return p, true
		}
	}
	return PanelDescriptor{}, false
}

// buildPanel assembles the data of one panel; the second result is false for
// an unknown panel
func buildPanel(ds *models.Dataset, id string) (interface{}, bool) {
	desc, ok := findPanel(id)
	if !ok {
		return nil, false
	}

	switch id {
	case models.PanelElectricity:
		return LinePanel{
			PanelDescriptor: desc,
			Traces:          []Trace{trace("Electricity", ds.Electricity, models.FieldElectricity)},
		}, true
	case models.PanelTemperature, models.PanelHumidity:
		field := models.FieldTemperature
		if id == models.PanelHumidity {
			field = models.FieldHumidity
		}
		return LinePanel{
			PanelDescriptor: desc,
			Traces: []Trace{
				trace("Indoor", ds.Indoor, field),
				trace("Outdoor", ds.Outdoor, field),
			},
		}, true
	default:
		return heatmapPanel(desc, ds.Heatmap), true
	}
}

func heatmapPanel(desc PanelDescriptor, m models.DayHourMatrix) HeatmapPanel {
	panel := HeatmapPanel{
		PanelDescriptor: desc,
		X:               m.Keys(),
		Y:               make([]int, models.HoursPerDay),
		Z:               make([][]float64, models.HoursPerDay),
	}
	for h := range panel.Y {
		panel.Y[h] = h
		panel.Z[h] = make([]float64, m.Len())
		for d, day := range m.Days {
			panel.Z[h][d] = day.Hours[h]
		}
	}
	return panel
}

func trace(name string, s models.TimeSeries, field string) Trace {
	return Trace{
		Name: name,
		X:    timestamps(s.Index),
		Y:    nullable(s.Column(field)),
	}
}

func seriesResponse(source string, s models.TimeSeries) SeriesResponse {
	resp := SeriesResponse{
		Source:      source,
		Aggregation: s.Aggregation.String(),
		Cadence:     s.Cadence.String(),
		Index:       timestamps(s.Index),
		Fields:      make(map[string][]*float64, len(s.Fields)),
	}
	for i, f := range s.Fields {
		resp.Fields[f] = nullable(s.Columns[i])
	}
	return resp
}

func timestamps(index []time.Time) []string {
	out := make([]string, len(index))
	for i, t := range index {
		out[i] = t.Format(time.RFC3339)
	}
	return out
}

// nullable maps missing values to nil so they encode as JSON null
func nullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if !models.Missing(values[i]) {
			v := values[i]
			out[i] = &v
		}
	}
	return out
}
