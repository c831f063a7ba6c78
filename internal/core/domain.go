package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day layout used by the dataset and the date picker.
const DateLayout = "2006-01-02"

const (
	Spring Season = 1
	Summer Season = 2
	Fall   Season = 3
	Winter Season = 4
)

const (
	Year2011 YearCode = 0
	Year2012 YearCode = 1
)

type (
	// Season is the dataset's 1-based season code.
	Season int

	// YearCode is the dataset's 0-based year code.
	YearCode int

	Date struct {
		time.Time
	}

	// UsageRecord is one row of bike-share activity for a date (and hour, in the hourly dataset).
	UsageRecord struct {
		Date       Date
		Hour       int  // 0-23, meaningful only when HasHour is set
		HasHour    bool // false for the daily dataset
		Weekday    int  // 0-6, Sunday first
		WorkingDay bool
		Holiday    bool
		Season     Season
		Year       YearCode
		Month      int // 1-12
		Registered int64
		Casual     int64
		Total      int64
	}
)

var (
	ErrZeroDate          = errors.New("date cannot be zero")
	ErrInvalidHour       = errors.New("invalid hour")
	ErrInvalidWeekday    = errors.New("invalid weekday")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidSeason     = errors.New("invalid season")
	ErrInvalidYear       = errors.New("invalid year code")
	ErrNegativeCount     = errors.New("negative user count")
	ErrInconsistentTotal = errors.New("total count differs from registered + casual")
)

var (
	seasonNames  = [...]string{"Spring", "Summer", "Fall", "Winter"}
	monthNames   = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Des"}
	weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Compare returns -1, 0 or +1 comparing calendar days.
func (d Date) Compare(o Date) int {
	return d.Time.Compare(o.Time)
}

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	return d.Compare(o) < 0
}

// After reports whether d is a later calendar day than o.
func (d Date) After(o Date) bool {
	return d.Compare(o) > 0
}

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.Compare(o) == 0
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (s Season) Valid() bool {
	return s >= Spring && s <= Winter
}

func (s Season) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Season(%d)", int(s))
	}
	return seasonNames[s-1]
}

// ParseSeason accepts the numeric code or the season name.
func ParseSeason(v string) (Season, error) {
	v = strings.TrimSpace(v)
	for i, name := range seasonNames {
		if strings.EqualFold(v, name) {
			return Season(i + 1), nil
		}
	}
	if strings.EqualFold(v, "autumn") {
		return Fall, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || !Season(n).Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeason, v)
	}
	return Season(n), nil
}

func (y YearCode) Valid() bool {
	return y == Year2011 || y == Year2012
}

// CalendarYear maps the year code to the calendar year it stands for.
func (y YearCode) CalendarYear() int {
	return 2011 + int(y)
}

// MonthName returns the short month label used on chart axes.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// WeekdayName returns the weekday label, 0 being Sunday.
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return weekdayNames[weekday]
}

func (r UsageRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if r.HasHour && (r.Hour < 0 || r.Hour > 23) {
		return fmt.Errorf("%w: %d", ErrInvalidHour, r.Hour)
	}
	if r.Weekday < 0 || r.Weekday > 6 {
		return fmt.Errorf("%w: %d", ErrInvalidWeekday, r.Weekday)
	}
	if r.Month < 1 || r.Month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, r.Month)
	}
	if !r.Season.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSeason, int(r.Season))
	}
	if !r.Year.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidYear, int(r.Year))
	}
	if r.Registered < 0 || r.Casual < 0 || r.Total < 0 {
		return ErrNegativeCount
	}
	if r.Total != r.Registered+r.Casual {
		return fmt.Errorf("%w: %d != %d + %d", ErrInconsistentTotal, r.Total, r.Registered, r.Casual)
	}
	return nil
}
