// Package dataset loads the bike-share usage table and holds it read-only
// for the lifetime of the process.
package dataset

import (
	"context"
	"fmt"
	"slices"
	"time"

	"bikeshare/internal/core"
)

// Dataset is an immutable, date-sorted set of usage records.
type Dataset struct {
	records  []core.UsageRecord
	source   string
	loadedAt time.Time
	min, max core.Date
}

// New builds a Dataset from records, copying and stably sorting them by date.
func New(source string, records []core.UsageRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b core.UsageRecord) int {
		return a.Date.Compare(b.Date)
	})
	return &Dataset{
		records:  sorted,
		source:   source,
		loadedAt: time.Now(),
		min:      sorted[0].Date,
		max:      sorted[len(sorted)-1].Date,
	}, nil
}

// Load reads every record from src and wraps them in a Dataset.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset from %s: %w", src.Name(), err)
	}
	ds, err := New(src.Name(), records)
	if err != nil {
		return nil, fmt.Errorf("load dataset from %s: %w", src.Name(), err)
	}
	return ds, nil
}

// Records returns the sorted records. Callers must not modify the slice.
func (d *Dataset) Records() []core.UsageRecord { return d.records }

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) MinDate() core.Date { return d.min }

func (d *Dataset) MaxDate() core.Date { return d.max }

// Source names where the records came from.
func (d *Dataset) Source() string { return d.source }

func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// DefaultRange spans the whole dataset.
func (d *Dataset) DefaultRange() core.DateRange {
	return core.DateRange{Start: d.min, End: d.max}
}

// Clamp bounds both ends of r to the dataset span. Zero ends take the
// matching dataset bound. A range that is inverted or lies wholly outside the
// span selects nothing and is returned as requested.
func (d *Dataset) Clamp(r core.DateRange) core.DateRange {
	if r.Start.IsZero() {
		r.Start = d.min
	}
	if r.End.IsZero() {
		r.End = d.max
	}
	if r.Inverted() || r.End.Before(d.min) || r.Start.After(d.max) {
		return r
	}
	r.Start = clampDate(r.Start, d.min, d.max)
	r.End = clampDate(r.End, d.min, d.max)
	return r
}

func clampDate(v, lo, hi core.Date) core.Date {
	if v.Before(lo) {
		return lo
	}
	if v.After(hi) {
		return hi
	}
	return v
}
