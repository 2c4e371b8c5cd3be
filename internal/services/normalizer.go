package services

import (
	"math"
	"time"

	"dwelling-dashboard/internal/models"
)

// bucket accumulates the readings of one cadence-wide interval
type bucket struct {
	sums   []float64
	counts []int
}

// Normalize resamples a raw reading table into a regularly spaced TimeSeries.
//
// Readings are grouped into half-open buckets [t, t+cadence) where t is the
// timestamp floored to a multiple of cadence on the Unix epoch. Every bucket
// between the first and last observed one is emitted in ascending order.
// Missing cells (NaN) are skipped. A bucket without values holds 0 under Sum
// and NaN under Mean. A non-positive cadence falls back to one hour.
func Normalize(table models.RawTable, cadence time.Duration, agg models.Aggregation) models.TimeSeries {
	if cadence <= 0 {
		cadence = models.HourlyCadence
	}

	fields := append([]string(nil), table.Fields...)
	series := models.TimeSeries{
		Cadence:     cadence,
		Aggregation: agg,
		Fields:      fields,
		Columns:     make([][]float64, len(fields)),
	}

	if len(table.Rows) == 0 {
		for i := range series.Columns {
			series.Columns[i] = []float64{}
		}
		series.Index = []time.Time{}
		return series
	}

	step := int64(cadence / time.Second)
	if step <= 0 {
		step = 1
	}

	buckets := make(map[int64]*bucket)
	first, last := int64(math.MaxInt64), int64(math.MinInt64)

	for _, row := range table.Rows {
		start := floorDiv(row.Timestamp, step) * step

		b, ok := buckets[start]
		if !ok {
			b = &bucket{
				sums:   make([]float64, len(fields)),
				counts: make([]int, len(fields)),
			}
			buckets[start] = b
		}

		for i := range fields {
			if i >= len(row.Values) || models.Missing(row.Values[i]) {
				continue
			}
			b.sums[i] += row.Values[i]
			b.counts[i]++
		}

		if start < first {
			first = start
		}
		if start > last {
			last = start
		}
	}

	n := int((last-first)/step) + 1
	series.Index = make([]time.Time, n)
	for i := range series.Columns {
		series.Columns[i] = make([]float64, n)
	}

	for k := 0; k < n; k++ {
		start := first + int64(k)*step
		series.Index[k] = time.Unix(start, 0).UTC()

		b := buckets[start]
		for i := range fields {
			series.Columns[i][k] = aggregate(b, i, agg)
		}
	}

	return series
}

// aggregate returns the bucket value of field i; b may be nil for a gap
func aggregate(b *bucket, i int, agg models.Aggregation) float64 {
	if agg == models.Sum {
		if b == nil {
			return 0
		}
		return b.sums[i]
	}

	if b == nil || b.counts[i] == 0 {
		return math.NaN()
	}
	return b.sums[i] / float64(b.counts[i])
}

// floorDiv divides rounding towards negative infinity
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
