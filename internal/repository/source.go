package repository

import (
	"context"

	"dwelling-dashboard/internal/models"
)

// SourceSpec names one reading table and the numeric fields expected in it
type SourceSpec struct {
	Name     string   // indoor, outdoor or electricity
	Location string   // CSV path, or the source label of a database table
	Fields   []string // required value columns besides the timestamp
}

// ReadingSource provides the raw reading tables the dataset is built from
type ReadingSource interface {
	// Load reads every row of one table. Rows come back in source order.
	Load(ctx context.Context, spec SourceSpec) (models.RawTable, error)
}
