package http

import (
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// templateFuncs are available to every page template.
var templateFuncs = template.FuncMap{
	"commas": humanize.Comma,
	"decimal": func(v float64) string {
		return humanize.FormatFloat("#,###.##", v)
	},
	"ago": humanize.Time,
	"date": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
