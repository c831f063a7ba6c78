package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bikeshare/internal/core"
)

type staticSource struct {
	records []core.UsageRecord
	err     error
}

func (s staticSource) Load(context.Context) ([]core.UsageRecord, error) { return s.records, s.err }
func (s staticSource) Name() string                                     { return "static" }

func day(y, m, d int, total int64) core.UsageRecord {
	return core.UsageRecord{
		Date: core.NewDate(y, m, d), Weekday: 1, Season: core.Spring,
		Month: m, Registered: total, Total: total,
	}
}

func TestLoadSortsStably(t *testing.T) {
	in := []core.UsageRecord{
		day(2011, 1, 3, 1),
		day(2011, 1, 1, 2),
		day(2011, 1, 3, 3),
		day(2011, 1, 2, 4),
	}
	ds, err := Load(context.Background(), staticSource{records: in})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ds.Records()
	wantTotals := []int64{2, 4, 1, 3}
	for i, w := range wantTotals {
		if got[i].Total != w {
			t.Fatalf("position %d: got total %d want %d", i, got[i].Total, w)
		}
	}
	if !ds.MinDate().Equal(core.NewDate(2011, 1, 1)) || !ds.MaxDate().Equal(core.NewDate(2011, 1, 3)) {
		t.Fatalf("unexpected bounds %v %v", ds.MinDate(), ds.MaxDate())
	}
	if in[0].Total != 1 {
		t.Fatalf("input slice was reordered")
	}
	if ds.Len() != 4 || ds.Source() != "static" || ds.LoadedAt().IsZero() {
		t.Fatalf("unexpected metadata")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(context.Background(), staticSource{}); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
	boom := errors.New("boom")
	if _, err := Load(context.Background(), staticSource{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestClamp(t *testing.T) {
	ds, err := New("t", []core.UsageRecord{day(2011, 1, 1, 1), day(2012, 12, 31, 1)})
	if err != nil {
		t.Fatal(err)
	}
	d := core.NewDate

	cases := []struct {
		name     string
		in       core.DateRange
		want     core.DateRange
		inverted bool
	}{
		{"zero takes bounds", core.DateRange{}, core.DateRange{Start: d(2011, 1, 1), End: d(2012, 12, 31)}, false},
		{"outside clamps", core.DateRange{Start: d(2010, 1, 1), End: d(2013, 1, 1)}, core.DateRange{Start: d(2011, 1, 1), End: d(2012, 12, 31)}, false},
		{"inside kept", core.DateRange{Start: d(2011, 5, 1), End: d(2011, 6, 1)}, core.DateRange{Start: d(2011, 5, 1), End: d(2011, 6, 1)}, false},
		{"after span echoed", core.DateRange{Start: d(2013, 1, 1), End: d(2013, 12, 31)}, core.DateRange{Start: d(2013, 1, 1), End: d(2013, 12, 31)}, false},
		{"before span echoed", core.DateRange{Start: d(2009, 1, 1), End: d(2009, 6, 1)}, core.DateRange{Start: d(2009, 1, 1), End: d(2009, 6, 1)}, false},
		{"open start before span", core.DateRange{End: d(2010, 6, 1)}, core.DateRange{Start: d(2011, 1, 1), End: d(2010, 6, 1)}, true},
		{"inverted echoed", core.DateRange{Start: d(2014, 1, 2), End: d(2014, 1, 1)}, core.DateRange{Start: d(2014, 1, 2), End: d(2014, 1, 1)}, true},
	}
	for _, tc := range cases {
		got := ds.Clamp(tc.in)
		if !got.Start.Equal(tc.want.Start) || !got.End.Equal(tc.want.End) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
		if got.Inverted() != tc.inverted {
			t.Fatalf("%s: inverted = %v", tc.name, got.Inverted())
		}
	}

	for _, r := range []core.DateRange{
		{Start: d(2013, 1, 1), End: d(2013, 12, 31)},
		{Start: d(2009, 1, 1), End: d(2009, 6, 1)},
		{End: d(2010, 6, 1)},
	} {
		if n := len(core.FilterByDate(ds.Records(), ds.Clamp(r))); n != 0 {
			t.Fatalf("range %v outside the span selected %d records", r, n)
		}
	}

	for _, r := range []core.DateRange{
		{Start: d(2011, 6, 1), End: d(2011, 5, 1)},
		{Start: d(2014, 1, 2), End: d(2014, 1, 1)},
		{Start: d(2009, 1, 2), End: d(2009, 1, 1)},
	} {
		if !ds.Clamp(r).Inverted() {
			t.Fatalf("clamping %v lost the inversion", r)
		}
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(hourlyCSV))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/data.csv", 5*time.Second)
	recs, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}

	bad := NewHTTPSource(srv.URL+"/missing", 5*time.Second)
	if _, err := bad.Load(context.Background()); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hour.csv")
	if err := os.WriteFile(path, []byte(hourlyCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	ds, err := Load(context.Background(), FileSource{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Len() != 3 || ds.Source() != path {
		t.Fatalf("unexpected dataset %d %s", ds.Len(), ds.Source())
	}

	if _, err := (FileSource{Path: filepath.Join(t.TempDir(), "nope.csv")}).Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
