package models

import (
	"math"
	"time"
)

// Field names used by the dwelling's three reading tables
const (
	FieldTimestamp   = "Timestamp"
	FieldTemperature = "Temperature"
	FieldHumidity    = "Humidity"
	FieldElectricity = "Electricity"
)

// HourlyCadence is the bucket width used throughout the dashboard
const HourlyCadence = time.Hour

// Aggregation selects how readings falling into one bucket are combined
type Aggregation int

const (
	// Mean suits instantaneous samples (temperature, humidity)
	Mean Aggregation = iota
	// Sum suits metered deltas (electricity)
	Sum
)

// String returns string representation of the aggregation
func (a Aggregation) String() string {
	switch a {
	case Mean:
		return "MEAN"
	case Sum:
		return "SUM"
	default:
		return "UNKNOWN"
	}
}

// RawReading represents a single row of a reading table.
// Values are positional and line up with RawTable.Fields; NaN marks an empty cell.
type RawReading struct {
	Timestamp int64     // Epoch seconds
	Values    []float64 // One entry per RawTable field
}

// Time returns the reading timestamp in UTC
func (r RawReading) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// RawTable is an unordered set of readings sharing the same numeric fields
type RawTable struct {
	Source string
	Fields []string
	Rows   []RawReading
}

// Len returns the number of rows
func (t RawTable) Len() int {
	return len(t.Rows)
}

// FieldIndex returns the position of a field, or -1 when absent
func (t RawTable) FieldIndex(field string) int {
	for i, name := range t.Fields {
		if name == field {
			return i
		}
	}
	return -1
}

// Missing reports whether a value stands for an absent reading; NaN and ±Inf
// both do
func Missing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
