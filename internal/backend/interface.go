package backend

import (
	"context"
	"time"

	"bikeshare/internal/dataset"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SourceResult contains the dataset source and an optional cleanup function
type SourceResult struct {
	Source  dataset.Source
	Cleanup CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *SourceResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates dataset sources based on configuration
type Factory interface {
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
}

// Config holds configuration for source creation
type Config struct {
	Type SourceType

	// Remote CSV
	DatasetURL   string
	FetchTimeout time.Duration

	// Local CSV
	DatasetFile string

	// SQLite snapshot
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// SourceType names where the dataset is read from
type SourceType string

const (
	CSVSource    SourceType = "csv"
	FileSource   SourceType = "file"
	SQLiteSource SourceType = "sqlite"
	SheetsSource SourceType = "sheets"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case CSVSource, FileSource, SQLiteSource, SheetsSource:
		return true
	default:
		return false
	}
}
