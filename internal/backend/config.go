package backend

import (
	"errors"
	"fmt"

	"bikeshare/internal/config"
)

// FromAppConfig converts the application config to a source config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	sourceType := SourceType(appConfig.DataSource)
	if !sourceType.IsValid() {
		return Config{}, fmt.Errorf("invalid data source in config: %s", appConfig.DataSource)
	}

	return Config{
		Type: sourceType,

		DatasetURL:   appConfig.DatasetURL,
		FetchTimeout: appConfig.FetchTimeout,
		DatasetFile:  appConfig.DatasetFile,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetRange:         appConfig.GoogleSheetRange,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
	}, nil
}

// Validate validates the source configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid data source: %s", c.Type)
	}

	switch c.Type {
	case CSVSource:
		if c.DatasetURL == "" {
			return errors.New("dataset URL is required for csv source")
		}
	case FileSource:
		if c.DatasetFile == "" {
			return errors.New("dataset file is required for file source")
		}
	case SQLiteSource:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite source")
		}
	case SheetsSource:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets source")
		}
		if c.GoogleSheetRange == "" {
			return errors.New("Google Sheet range is required for sheets source")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			return errors.New("either a service account file or JSON must be provided for sheets source")
		}
	}

	return nil
}

// GetSourceTypes returns all valid source types
func GetSourceTypes() []SourceType {
	return []SourceType{CSVSource, FileSource, SQLiteSource, SheetsSource}
}

// GetSourceTypeStrings returns all valid source type strings
func GetSourceTypeStrings() []string {
	types := GetSourceTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
