package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"bikeshare/internal/core"
	"bikeshare/internal/dataset"
)

// serialEpoch is day zero of spreadsheet date serial numbers.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// toTable renders unformatted cell values the way the CSV export would. Date
// cells arrive as serial numbers and are written as YYYY-MM-DD.
func toTable(values [][]any) [][]string {
	rows := make([][]string, len(values))
	dateCol := -1
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			if i > 0 && j == dateCol {
				rows[i][j] = dateCell(v)
				continue
			}
			rows[i][j] = cellString(v)
		}
		if i == 0 {
			dateCol = columnIndex(rows[0], dataset.ColDate)
		}
	}
	return rows
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// dateCell converts a date serial number; text cells pass through unchanged.
func dateCell(v any) string {
	serial, ok := v.(float64)
	if !ok {
		return cellString(v)
	}
	days := int(math.Floor(serial))
	return core.DateOf(serialEpoch.AddDate(0, 0, days)).String()
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
