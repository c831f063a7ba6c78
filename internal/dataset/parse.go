package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bikeshare/internal/core"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyDataset  = errors.New("dataset has no records")
)

// Column names of the cleaned bike-share table.
const (
	ColDate       = "dteday"
	ColHour       = "hr"
	ColWeekday    = "weekday"
	ColWorkingDay = "workingday"
	ColHoliday    = "holiday"
	ColSeason     = "season"
	ColYear       = "yr"
	ColMonth      = "mnth"
	ColRegistered = "registered"
	ColCasual     = "casual"
	ColTotal      = "cnt"
)

var requiredColumns = []string{
	ColDate, ColWeekday, ColWorkingDay, ColHoliday, ColSeason,
	ColYear, ColRegistered, ColCasual, ColTotal,
}

var dateLayouts = []string{core.DateLayout, "2006-01-02 15:04:05", time.RFC3339}

// RowError locates a malformed value in the source table.
type RowError struct {
	Row    int // 1-based, header is row 1
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d column %q value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ReadCSV reads a CSV table with a header row into usage records.
func ReadCSV(r io.Reader) ([]core.UsageRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseTable(rows)
}

// ParseTable converts a header-first string matrix into usage records.
// Column lookup ignores case and surrounding whitespace; unknown columns
// (such as a leading index) are ignored.
func ParseTable(rows [][]string) ([]core.UsageRecord, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	cols := indexColumns(rows[0])
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ","))
	}

	out := make([]core.UsageRecord, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		rec, err := parseRow(rows[i], i+1, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name == "" {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// rowReader pulls typed fields from one row, remembering the first error.
type rowReader struct {
	row  []string
	line int
	cols map[string]int
	err  error
}

func (r *rowReader) raw(col string) (string, bool) {
	idx, ok := r.cols[col]
	if !ok || idx >= len(r.row) {
		return "", false
	}
	return strings.TrimSpace(r.row[idx]), true
}

func (r *rowReader) fail(col, value string, err error) {
	if r.err == nil {
		r.err = &RowError{Row: r.line, Column: col, Value: value, Err: err}
	}
}

func (r *rowReader) str(col string) string {
	v, ok := r.raw(col)
	if !ok || v == "" {
		r.fail(col, v, errors.New("empty value"))
	}
	return v
}

func (r *rowReader) count(col string) int64 {
	v := r.str(col)
	if r.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Some exports write counts as floats ("16.0").
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int64(f)) {
			r.fail(col, v, errors.New("not an integer"))
			return 0
		}
		n = int64(f)
	}
	return n
}

func (r *rowReader) flag(col string) bool {
	v := r.str(col)
	if r.err != nil {
		return false
	}
	b, err := parseFlag(v)
	if err != nil {
		r.fail(col, v, err)
	}
	return b
}

func parseRow(row []string, line int, cols map[string]int) (core.UsageRecord, error) {
	r := &rowReader{row: row, line: line, cols: cols}

	var rec core.UsageRecord
	if v := r.str(ColDate); r.err == nil {
		d, err := parseDate(v)
		if err != nil {
			r.fail(ColDate, v, err)
		}
		rec.Date = d
	}

	if v, ok := r.raw(ColHour); ok && v != "" {
		h := r.count(ColHour)
		rec.Hour, rec.HasHour = int(h), true
	}

	if v := r.str(ColWeekday); r.err == nil {
		wd, err := parseWeekday(v)
		if err != nil {
			r.fail(ColWeekday, v, err)
		}
		rec.Weekday = wd
	}

	rec.WorkingDay = r.flag(ColWorkingDay)
	rec.Holiday = r.flag(ColHoliday)

	if v := r.str(ColSeason); r.err == nil {
		s, err := core.ParseSeason(v)
		if err != nil {
			r.fail(ColSeason, v, err)
		}
		rec.Season = s
	}

	if v := r.str(ColYear); r.err == nil {
		y, err := parseYear(v)
		if err != nil {
			r.fail(ColYear, v, err)
		}
		rec.Year = y
	}

	rec.Month = rec.Date.Month()
	if v, ok := r.raw(ColMonth); ok && v != "" && r.err == nil {
		m, err := parseMonth(v)
		if err != nil {
			r.fail(ColMonth, v, err)
		}
		rec.Month = m
	}

	rec.Registered = r.count(ColRegistered)
	rec.Casual = r.count(ColCasual)
	rec.Total = r.count(ColTotal)

	if r.err != nil {
		return core.UsageRecord{}, r.err
	}
	if err := rec.Validate(); err != nil {
		return core.UsageRecord{}, &RowError{Row: line, Column: columnFor(err), Err: err}
	}
	return rec, nil
}

func columnFor(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidHour):
		return ColHour
	case errors.Is(err, core.ErrInvalidMonth):
		return ColMonth
	case errors.Is(err, core.ErrInconsistentTotal):
		return ColTotal
	case errors.Is(err, core.ErrNegativeCount):
		return ColTotal
	default:
		return ""
	}
}

func parseDate(v string) (core.Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, fmt.Errorf("unrecognized date, want %s", core.DateLayout)
}

func parseFlag(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "working day", "holiday":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return false, errors.New("not a boolean flag")
}

func parseWeekday(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 6 {
			return 0, core.ErrInvalidWeekday
		}
		return n, nil
	}
	for i := 0; i < 7; i++ {
		name := core.WeekdayName(i)
		if strings.EqualFold(v, name) || strings.EqualFold(v, name[:3]) {
			return i, nil
		}
	}
	return 0, core.ErrInvalidWeekday
}

func parseYear(v string) (core.YearCode, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.ErrInvalidYear
	}
	if n >= 2011 {
		n -= 2011
	}
	y := core.YearCode(n)
	if !y.Valid() {
		return 0, core.ErrInvalidYear
	}
	return y, nil
}

var monthAliases = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "mei": 5, "jun": 6,
	"jul": 7, "aug": 8, "agu": 8, "sep": 9, "oct": 10, "okt": 10, "nov": 11,
	"dec": 12, "des": 12,
}

func parseMonth(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 1 || n > 12 {
			return 0, core.ErrInvalidMonth
		}
		return n, nil
	}
	key := strings.ToLower(v)
	if len(key) > 3 {
		key = key[:3]
	}
	if m, ok := monthAliases[key]; ok {
		return m, nil
	}
	return 0, core.ErrInvalidMonth
}
