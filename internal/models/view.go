package models

import "time"

// Panel identifiers of the dashboard
const (
	PanelElectricity = "electricity"
	PanelHeatmap     = "heatmap"
	PanelTemperature = "temperature"
	PanelHumidity    = "humidity"
)

// Window is the visible x-axis range of a line panel
type Window struct {
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// DayWindow is the visible x-axis range of the heatmap
type DayWindow struct {
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

// ViewState is the result of one slider event.
// A nil window means the panel has nothing to show.
type ViewState struct {
	Low         int        `json:"low"`
	High        int        `json:"high"`
	Electricity *Window    `json:"electricity"`
	Temperature *Window    `json:"temperature"`
	Humidity    *Window    `json:"humidity"`
	Heatmap     *DayWindow `json:"heatmap"`
}

// Slider describes the range slider driving every panel
type Slider struct {
	Min   int            `json:"min"`
	Max   int            `json:"max"`
	Step  int            `json:"step"`
	Value [2]int         `json:"value"`
	Marks map[int]string `json:"marks"`
}

// DwellingProfile is the descriptive header of the monitored house
type DwellingProfile struct {
	Name           string  `json:"name"`
	Title          string  `json:"title"`
	Location       string  `json:"location"`
	Orientation    string  `json:"orientation"`
	Occupants      string  `json:"occupants"`
	Typology       string  `json:"typology"`
	Masonry        string  `json:"masonry"`
	LivingSpaceM2  float64 `json:"living_space_m2"`
	HeatingPresets string  `json:"heating_presets"`
	Heating        string  `json:"heating"`
	HotWater       string  `json:"hot_water"`
}
