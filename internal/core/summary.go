package core

import "strconv"

// Dashboard is everything one render pass needs: the headline metrics, the
// two aggregate tables and the series behind the six chart panels.
type Dashboard struct {
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Summary Summary `json:"summary"`

	Hourly  []HourlyRow  `json:"hourly"`
	Weekday []WeekdayRow `json:"weekday"`

	MonthlyUsers    []TrendSeries `json:"monthly_users"`
	MonthlyByYear   []TrendSeries `json:"monthly_by_year"`
	Seasons         []GroupMean   `json:"seasons"`
	WorkingDayMeans []GroupMean   `json:"workingday_means"`
	HolidayMeans    []GroupMean   `json:"holiday_means"`
	WeekdayMeans    []GroupMean   `json:"weekday_means"`
}

// Empty reports whether the filtered set had no records.
func (d *Dashboard) Empty() bool {
	return d.Summary.Records == 0
}

// BuildDashboard filters records to r and derives every table from the result.
func BuildDashboard(records []UsageRecord, r DateRange) *Dashboard {
	filtered := FilterByDate(records, r)

	registered := func(u UsageRecord) float64 { return float64(u.Registered) }
	casual := func(u UsageRecord) float64 { return float64(u.Casual) }
	total := func(u UsageRecord) float64 { return float64(u.Total) }

	return &Dashboard{
		Start:   r.Start.String(),
		End:     r.End.String(),
		Summary: Summarize(filtered),
		Hourly:  AggregateHourly(filtered),
		Weekday: AggregateWeekday(filtered),
		MonthlyUsers: []TrendSeries{
			MonthlyTrend(filtered, "Registered", registered),
			MonthlyTrend(filtered, "Casual", casual),
		},
		MonthlyByYear: MonthlyTrendBy(filtered,
			func(u UsageRecord) int { return int(u.Year) },
			func(k int) string { return strconv.Itoa(YearCode(k).CalendarYear()) },
			total),
		Seasons:         GroupMeans(filtered, func(u UsageRecord) int { return int(u.Season) }, seasonLabel),
		WorkingDayMeans: GroupMeans(filtered, func(u UsageRecord) int { return boolKey(u.WorkingDay) }, flagLabel("Working Day")),
		HolidayMeans:    GroupMeans(filtered, func(u UsageRecord) int { return boolKey(u.Holiday) }, flagLabel("Holiday")),
		WeekdayMeans:    GroupMeans(filtered, func(u UsageRecord) int { return u.Weekday }, WeekdayName),
	}
}

func seasonLabel(k int) string {
	return Season(k).String()
}

func boolKey(b bool) int {
	if b {
		return 1
	}
	return 0
}

func flagLabel(yes string) func(int) string {
	return func(k int) string {
		if k == 1 {
			return yes
		}
		return "No"
	}
}
