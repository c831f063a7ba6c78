package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2011, 1, 1), true},
		{NewDate(2012, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2011-03-04 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2011-03-04" {
		t.Fatalf("got %q", d.String())
	}
	if d.Month() != 3 {
		t.Fatalf("month = %d", d.Month())
	}
	if _, err := ParseDate("04/03/2011"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}

func TestDateOfTruncates(t *testing.T) {
	ts := time.Date(2011, 5, 6, 23, 59, 0, 0, time.UTC)
	if !DateOf(ts).Equal(NewDate(2011, 5, 6)) {
		t.Fatalf("DateOf should drop the time of day")
	}
	if (Date{}).String() != "" {
		t.Fatalf("zero date should render empty")
	}
}

func TestDateCompare(t *testing.T) {
	a, b := NewDate(2011, 1, 1), NewDate(2011, 1, 2)
	if !a.Before(b) || a.After(b) || a.Equal(b) {
		t.Fatalf("comparison of %v and %v is wrong", a, b)
	}
	if a.Compare(a) != 0 {
		t.Fatalf("date should equal itself")
	}
}

func TestParseSeason(t *testing.T) {
	cases := []struct {
		in   string
		want Season
		ok   bool
	}{
		{"1", Spring, true},
		{"4", Winter, true},
		{"summer", Summer, true},
		{"Fall", Fall, true},
		{"autumn", Fall, true},
		{"0", 0, false},
		{"5", 0, false},
		{"1abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseSeason(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("ParseSeason(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidSeason) {
			t.Fatalf("ParseSeason(%q) expected ErrInvalidSeason, got %v", tc.in, err)
		}
	}
}

func TestLabels(t *testing.T) {
	if MonthName(5) != "Mei" || MonthName(12) != "Des" || MonthName(13) != "" {
		t.Fatalf("unexpected month labels")
	}
	if WeekdayName(0) != "Sunday" || WeekdayName(6) != "Saturday" || WeekdayName(7) != "" {
		t.Fatalf("unexpected weekday labels")
	}
	if Year2012.CalendarYear() != 2012 {
		t.Fatalf("year code 1 should be 2012")
	}
	if Season(9).String() != "Season(9)" {
		t.Fatalf("invalid season should render its code")
	}
}

func validRecord() UsageRecord {
	return UsageRecord{
		Date:       NewDate(2011, 1, 1),
		Hour:       0,
		HasHour:    true,
		Weekday:    6,
		Season:     Spring,
		Year:       Year2011,
		Month:      1,
		Registered: 13,
		Casual:     3,
		Total:      16,
	}
}

func TestUsageRecordValidate(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*UsageRecord)
		want   error
	}{
		{"zero date", func(r *UsageRecord) { r.Date = Date{} }, ErrZeroDate},
		{"hour", func(r *UsageRecord) { r.Hour = 24 }, ErrInvalidHour},
		{"weekday", func(r *UsageRecord) { r.Weekday = 7 }, ErrInvalidWeekday},
		{"month", func(r *UsageRecord) { r.Month = 0 }, ErrInvalidMonth},
		{"season", func(r *UsageRecord) { r.Season = 5 }, ErrInvalidSeason},
		{"year", func(r *UsageRecord) { r.Year = 2 }, ErrInvalidYear},
		{"negative", func(r *UsageRecord) { r.Casual = -1; r.Total = 12 }, ErrNegativeCount},
		{"total", func(r *UsageRecord) { r.Total = 17 }, ErrInconsistentTotal},
	}
	for _, tc := range cases {
		r := validRecord()
		tc.mutate(&r)
		if err := r.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	daily := validRecord()
	daily.HasHour = false
	daily.Hour = 99
	if err := daily.Validate(); err != nil {
		t.Fatalf("hour must be ignored without HasHour: %v", err)
	}
}
