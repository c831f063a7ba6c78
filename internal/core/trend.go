package core

import (
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// z95 is the two-sided 95% normal quantile.
const z95 = 1.959964

// TrendPoint is a per-month mean with its 95% confidence band.
type TrendPoint struct {
	Month int     `json:"month"`
	Label string  `json:"label"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// TrendSeries is a named line of monthly points, sorted by month.
type TrendSeries struct {
	Name   string       `json:"name"`
	Points []TrendPoint `json:"points"`
}

// MonthlyTrend computes the monthly mean of value with a normal-approximation
// confidence band.
func MonthlyTrend(records []UsageRecord, name string, value func(UsageRecord) float64) TrendSeries {
	byMonth := make(map[int][]float64)
	for _, r := range records {
		byMonth[r.Month] = append(byMonth[r.Month], value(r))
	}
	series := TrendSeries{Name: name, Points: make([]TrendPoint, 0, len(byMonth))}
	for _, month := range slices.Sorted(maps.Keys(byMonth)) {
		series.Points = append(series.Points, trendPoint(month, byMonth[month]))
	}
	return series
}

// MonthlyTrendBy splits records by key and computes one MonthlyTrend per key,
// sorted by key.
func MonthlyTrendBy(records []UsageRecord, key func(UsageRecord) int, name func(int) string, value func(UsageRecord) float64) []TrendSeries {
	parts := make(map[int][]UsageRecord)
	for _, r := range records {
		k := key(r)
		parts[k] = append(parts[k], r)
	}
	out := make([]TrendSeries, 0, len(parts))
	for _, k := range slices.Sorted(maps.Keys(parts)) {
		out = append(out, MonthlyTrend(parts[k], name(k), value))
	}
	return out
}

func trendPoint(month int, values []float64) TrendPoint {
	p := TrendPoint{Month: month, Label: MonthName(month), Count: len(values)}
	if len(values) == 0 {
		return p
	}
	if len(values) == 1 {
		p.Mean, p.Lower, p.Upper = values[0], values[0], values[0]
		return p
	}
	mean, std := stat.MeanStdDev(values, nil)
	half := z95 * stat.StdErr(std, float64(len(values)))
	if math.IsNaN(half) {
		half = 0
	}
	p.Mean = mean
	p.Lower = mean - half
	p.Upper = mean + half
	return p
}
