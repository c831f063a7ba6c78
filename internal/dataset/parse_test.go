package dataset

import (
	"errors"
	"strings"
	"testing"

	"bikeshare/internal/core"
)

const hourlyCSV = `,instant,dteday,season,yr,mnth,hr,holiday,weekday,workingday,casual,registered,cnt
0,1,2011-01-01,1,0,1,0,0,6,0,3,13,16
1,2,2011-01-01,1,0,1,1,0,6,0,8,32,40
2,3,2011-01-02,Spring,0,Jan,0,0,Sunday,No,17,16,33
`

func TestReadCSV(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader(hourlyCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	first := recs[0]
	want := core.UsageRecord{
		Date:       core.NewDate(2011, 1, 1),
		Hour:       0,
		HasHour:    true,
		Weekday:    6,
		Season:     core.Spring,
		Year:       core.Year2011,
		Month:      1,
		Registered: 13,
		Casual:     3,
		Total:      16,
	}
	if first != want {
		t.Fatalf("got %+v, want %+v", first, want)
	}
	if recs[1].Hour != 1 {
		t.Fatalf("hour not parsed: %+v", recs[1])
	}
	third := recs[2]
	if third.Weekday != 0 || third.Season != core.Spring || third.Month != 1 || third.WorkingDay {
		t.Fatalf("named values not parsed: %+v", third)
	}
}

func TestParseTableDailyWithoutHour(t *testing.T) {
	rows := [][]string{
		{"DTEDAY", " Season ", "yr", "holiday", "weekday", "workingday", "casual", "registered", "cnt"},
		{"2012-03-05 00:00:00", "1", "2012", "0", "1", "1", "100", "900", "1000"},
		{"", "", "", "", "", "", "", "", ""},
	}
	recs, err := ParseTable(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("blank rows should be skipped, got %d records", len(recs))
	}
	r := recs[0]
	if r.HasHour {
		t.Fatalf("daily row must not carry an hour")
	}
	if r.Year != core.Year2012 || r.Month != 3 || !r.WorkingDay {
		t.Fatalf("unexpected record %+v", r)
	}
}

func TestParseTableMissingColumn(t *testing.T) {
	rows := [][]string{{"dteday", "weekday", "cnt"}}
	_, err := ParseTable(rows)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "registered") {
		t.Fatalf("error should name the missing column: %v", err)
	}
}

func TestParseTableMalformed(t *testing.T) {
	header := []string{"dteday", "hr", "season", "yr", "holiday", "weekday", "workingday", "casual", "registered", "cnt"}
	cases := []struct {
		name   string
		row    []string
		column string
	}{
		{"bad date", []string{"01/02/2011", "0", "1", "0", "0", "6", "0", "1", "1", "2"}, ColDate},
		{"bad hour", []string{"2011-01-01", "x", "1", "0", "0", "6", "0", "1", "1", "2"}, ColHour},
		{"hour range", []string{"2011-01-01", "24", "1", "0", "0", "6", "0", "1", "1", "2"}, ColHour},
		{"bad season", []string{"2011-01-01", "0", "9", "0", "0", "6", "0", "1", "1", "2"}, ColSeason},
		{"bad year", []string{"2011-01-01", "0", "1", "2", "0", "6", "0", "1", "1", "2"}, ColYear},
		{"bad flag", []string{"2011-01-01", "0", "1", "0", "maybe", "6", "0", "1", "1", "2"}, ColHoliday},
		{"bad weekday", []string{"2011-01-01", "0", "1", "0", "0", "8", "0", "1", "1", "2"}, ColWeekday},
		{"total mismatch", []string{"2011-01-01", "0", "1", "0", "0", "6", "0", "1", "1", "3"}, ColTotal},
		{"empty count", []string{"2011-01-01", "0", "1", "0", "0", "6", "0", "", "1", "1"}, ColCasual},
	}
	for _, tc := range cases {
		_, err := ParseTable([][]string{header, tc.row})
		var rowErr *RowError
		if !errors.As(err, &rowErr) {
			t.Fatalf("%s: expected RowError, got %v", tc.name, err)
		}
		if rowErr.Row != 2 || rowErr.Column != tc.column {
			t.Fatalf("%s: got row %d column %q, want row 2 column %q", tc.name, rowErr.Row, rowErr.Column, tc.column)
		}
	}
}

func TestParseTableEmpty(t *testing.T) {
	if _, err := ParseTable(nil); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestParseFloatCounts(t *testing.T) {
	rows := [][]string{
		{"dteday", "season", "yr", "holiday", "weekday", "workingday", "casual", "registered", "cnt"},
		{"2011-01-01", "1", "0", "0", "6", "0", "3.0", "13.0", "16.0"},
	}
	recs, err := ParseTable(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].Total != 16 {
		t.Fatalf("got total %d", recs[0].Total)
	}
}
