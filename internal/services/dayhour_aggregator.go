package services

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"dwelling-dashboard/internal/models"
)

// sigmaThreshold is the number of standard deviations an entry may deviate
// from the mean before it is treated as an outlier
const sigmaThreshold = 3.0

// OutlierStats describes one run of the three-sigma filter
type OutlierStats struct {
	Field    string
	Mean     float64
	StdDev   float64
	Observed int
	Removed  int
}

// ThreeSigmaFilter returns the positions of the entries of values lying within
// mean ± 3σ (sample standard deviation). Boundary values are kept, missing
// values are dropped. With fewer than two observations σ is undefined and every
// observed value is kept.
func ThreeSigmaFilter(values []float64) ([]int, OutlierStats) {
	observed := make([]float64, 0, len(values))
	for _, v := range values {
		if !models.Missing(v) {
			observed = append(observed, v)
		}
	}

	result := OutlierStats{
		Observed: len(observed),
		Mean:     math.NaN(),
		StdDev:   math.NaN(),
	}

	keep := make([]int, 0, len(observed))
	if len(observed) < 2 {
		for i, v := range values {
			if !models.Missing(v) {
				keep = append(keep, i)
				result.Mean = v
			}
		}
		return keep, result
	}

	result.Mean, result.StdDev = stat.MeanStdDev(observed, nil)
	limit := sigmaThreshold * result.StdDev

	for i, v := range values {
		if models.Missing(v) {
			continue
		}
		if math.Abs(v-result.Mean) <= limit {
			keep = append(keep, i)
		}
	}
	result.Removed = len(observed) - len(keep)

	return keep, result
}

// AggregateDayHour pivots one field of an hourly series into a day by hour matrix.
func AggregateDayHour(series models.TimeSeries, field string) models.DayHourMatrix {
	matrix, _ := AggregateDayHourWithStats(series, field)
	return matrix
}

// AggregateDayHourWithStats is AggregateDayHour that also reports what the
// outlier filter removed.
//
// Entries outside mean ± 3σ are dropped, the rest is re-bucketed to hourly
// sums and grouped by UTC calendar day. Each day holds 24 slots indexed by hour
// of day; hours without an entry hold 0. Days are emitted in ascending order.
// An unknown field or an all-filtered series yields an empty matrix.
func AggregateDayHourWithStats(series models.TimeSeries, field string) (models.DayHourMatrix, OutlierStats) {
	matrix := models.DayHourMatrix{
		Field: field,
		Days:  []models.DayHours{},
	}

	values := series.Column(field)
	if values == nil || len(values) != len(series.Index) {
		return matrix, OutlierStats{Field: field}
	}

	keep, outliers := ThreeSigmaFilter(values)
	outliers.Field = field
	if len(keep) == 0 {
		return matrix, outliers
	}

	retained := models.RawTable{
		Source: series.Aggregation.String(),
		Fields: []string{field},
		Rows:   make([]models.RawReading, 0, len(keep)),
	}
	for _, i := range keep {
		retained.Rows = append(retained.Rows, models.RawReading{
			Timestamp: series.Index[i].Unix(),
			Values:    []float64{values[i]},
		})
	}

	hourly := Normalize(retained, models.HourlyCadence, models.Sum)
	sums := hourly.Columns[0]

	position := make(map[string]int)
	for k, t := range hourly.Index {
		key := models.DayKey(t)

		idx, ok := position[key]
		if !ok {
			y, m, d := t.Date()
			matrix.Days = append(matrix.Days, models.DayHours{
				Key:  key,
				Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			})
			idx = len(matrix.Days) - 1
			position[key] = idx
		}

		matrix.Days[idx].Hours[t.Hour()] += sums[k]
	}

	return matrix, outliers
}
