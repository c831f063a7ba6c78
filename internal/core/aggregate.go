package core

import (
	"maps"
	"slices"
)

// HourlyRow is one row of the hourly aggregate table.
type HourlyRow struct {
	Hour           int     `json:"hour"`
	MeanRegistered float64 `json:"mean_registered"`
	MeanCasual     float64 `json:"mean_casual"`
}

// WeekdayRow is one row of the weekday aggregate table.
type WeekdayRow struct {
	Weekday int    `json:"weekday"`
	Label   string `json:"label"`
	Total   int64  `json:"total"`
}

// GroupMean holds registered/casual means for one categorical key.
type GroupMean struct {
	Key            int     `json:"key"`
	Label          string  `json:"label"`
	Count          int     `json:"count"`
	MeanRegistered float64 `json:"mean_registered"`
	MeanCasual     float64 `json:"mean_casual"`
	MeanTotal      float64 `json:"mean_total"`
}

// Summary holds the headline metrics of a filtered set.
type Summary struct {
	Records    int   `json:"records"`
	Total      int64 `json:"total"`
	Registered int64 `json:"registered"`
	Casual     int64 `json:"casual"`
}

type accumulator struct {
	count      int
	registered int64
	casual     int64
	total      int64
}

func (a *accumulator) add(r UsageRecord) {
	a.count++
	a.registered += r.Registered
	a.casual += r.Casual
	a.total += r.Total
}

func (a *accumulator) mean(sum int64) float64 {
	if a.count == 0 {
		return 0
	}
	return float64(sum) / float64(a.count)
}

// accumulate groups records by key. Records for which key reports false are skipped.
func accumulate(records []UsageRecord, key func(UsageRecord) (int, bool)) map[int]*accumulator {
	groups := make(map[int]*accumulator)
	for _, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}
		acc, exists := groups[k]
		if !exists {
			acc = &accumulator{}
			groups[k] = acc
		}
		acc.add(r)
	}
	return groups
}

func sortedKeys(groups map[int]*accumulator) []int {
	return slices.Sorted(maps.Keys(groups))
}

// AggregateHourly returns the mean registered and casual counts per hour of day,
// sorted by hour. Records without an hour do not contribute.
func AggregateHourly(records []UsageRecord) []HourlyRow {
	groups := accumulate(records, func(r UsageRecord) (int, bool) {
		return r.Hour, r.HasHour
	})
	rows := make([]HourlyRow, 0, len(groups))
	for _, hour := range sortedKeys(groups) {
		acc := groups[hour]
		rows = append(rows, HourlyRow{
			Hour:           hour,
			MeanRegistered: acc.mean(acc.registered),
			MeanCasual:     acc.mean(acc.casual),
		})
	}
	return rows
}

// AggregateWeekday returns the total count per weekday, sorted by weekday.
func AggregateWeekday(records []UsageRecord) []WeekdayRow {
	groups := accumulate(records, func(r UsageRecord) (int, bool) {
		return r.Weekday, true
	})
	rows := make([]WeekdayRow, 0, len(groups))
	for _, wd := range sortedKeys(groups) {
		rows = append(rows, WeekdayRow{
			Weekday: wd,
			Label:   WeekdayName(wd),
			Total:   groups[wd].total,
		})
	}
	return rows
}

// GroupMeans returns per-key means sorted by key. label may be nil.
func GroupMeans(records []UsageRecord, key func(UsageRecord) int, label func(int) string) []GroupMean {
	groups := accumulate(records, func(r UsageRecord) (int, bool) {
		return key(r), true
	})
	out := make([]GroupMean, 0, len(groups))
	for _, k := range sortedKeys(groups) {
		acc := groups[k]
		gm := GroupMean{
			Key:            k,
			Count:          acc.count,
			MeanRegistered: acc.mean(acc.registered),
			MeanCasual:     acc.mean(acc.casual),
			MeanTotal:      acc.mean(acc.total),
		}
		if label != nil {
			gm.Label = label(k)
		}
		out = append(out, gm)
	}
	return out
}

// Summarize sums the counts of records.
func Summarize(records []UsageRecord) Summary {
	s := Summary{Records: len(records)}
	for _, r := range records {
		s.Total += r.Total
		s.Registered += r.Registered
		s.Casual += r.Casual
	}
	return s
}
