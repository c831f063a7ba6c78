// Package http provides HTTP server and handler implementations.
//
// This file implements parsing and validation of dashboard query parameters.

package http

import (
	"fmt"
	"net/url"

	"bikeshare/internal/core"
)

// Query parameter names for the date range form.
const (
	ParamStart = "start"
	ParamEnd   = "end"
)

// RangeError reports an unparsable range parameter.
type RangeError struct {
	Param string
	Value string
	Err   error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid %s date %q: expected YYYY-MM-DD", e.Param, e.Value)
}

func (e *RangeError) Unwrap() error { return e.Err }

// ParseDateRange reads start and end from query. A missing or empty value
// leaves the matching end zero so the dataset bound applies.
func ParseDateRange(query url.Values) (core.DateRange, error) {
	var r core.DateRange
	var err error
	if r.Start, err = parseDateParam(query, ParamStart); err != nil {
		return core.DateRange{}, err
	}
	if r.End, err = parseDateParam(query, ParamEnd); err != nil {
		return core.DateRange{}, err
	}
	return r, nil
}

func parseDateParam(query url.Values, name string) (core.Date, error) {
	v := sanitizeInput(query.Get(name))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, &RangeError{Param: name, Value: truncate(v, 32), Err: err}
	}
	return d, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
