package models

import (
	"fmt"
	"time"
)

// TimeSeries is a regularly spaced, time-indexed table.
// Index is strictly increasing in steps of Cadence. Columns holds one slice per
// entry of Fields, each as long as Index. Empty MEAN buckets hold NaN.
type TimeSeries struct {
	Cadence     time.Duration
	Aggregation Aggregation
	Fields      []string
	Index       []time.Time
	Columns     [][]float64
}

// Len returns the number of buckets
func (s TimeSeries) Len() int {
	return len(s.Index)
}

// Empty reports whether the series holds no buckets
func (s TimeSeries) Empty() bool {
	return len(s.Index) == 0
}

// Column returns the values of a field, or nil when the field is unknown
func (s TimeSeries) Column(field string) []float64 {
	for i, name := range s.Fields {
		if name == field {
			return s.Columns[i]
		}
	}
	return nil
}

// HoursPerDay is the number of slots in a DayHours row
const HoursPerDay = 24

// DayHours holds the 24 hourly totals of one calendar day
type DayHours struct {
	Key   string               `json:"key"`
	Date  time.Time            `json:"date"`
	Hours [HoursPerDay]float64 `json:"hours"`
}

// Total returns the sum of the day's hourly values
func (d DayHours) Total() float64 {
	var total float64
	for _, v := range d.Hours {
		total += v
	}
	return total
}

// DayHourMatrix pivots an hourly series into calendar day by hour of day
type DayHourMatrix struct {
	Field string     `json:"field"`
	Days  []DayHours `json:"days"`
}

// Len returns the number of days
func (m DayHourMatrix) Len() int {
	return len(m.Days)
}

// Keys returns the day labels in order
func (m DayHourMatrix) Keys() []string {
	keys := make([]string, len(m.Days))
	for i, d := range m.Days {
		keys[i] = d.Key
	}
	return keys
}

// Day looks up a day by its label
func (m DayHourMatrix) Day(key string) (DayHours, bool) {
	for _, d := range m.Days {
		if d.Key == key {
			return d, true
		}
	}
	return DayHours{}, false
}

// DayKey formats the unpadded Year-Month-Day label of a UTC date (e.g. 2019-1-5)
func DayKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}

// Dataset holds every series the dashboard displays.
// It is built once at startup and only read afterwards.
type Dataset struct {
	Indoor      TimeSeries
	Outdoor     TimeSeries
	Electricity TimeSeries
	Heatmap     DayHourMatrix
	LoadedAt    time.Time
}

// Series returns a series by source name
func (d *Dataset) Series(source string) (TimeSeries, bool) {
	switch source {
	case SourceIndoor:
		return d.Indoor, true
	case SourceOutdoor:
		return d.Outdoor, true
	case SourceElectricity:
		return d.Electricity, true
	default:
		return TimeSeries{}, false
	}
}

// Source names
const (
	SourceIndoor      = "indoor"
	SourceOutdoor     = "outdoor"
	SourceElectricity = "electricity"
)
