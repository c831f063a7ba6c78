package backend

import (
	"context"
	"fmt"
	"log/slog"

	"bikeshare/internal/adapters"
	"bikeshare/internal/dataset"
	gsheet "bikeshare/internal/sheets/google"
	"bikeshare/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CSVSource:
		f.logger.Info("Using remote CSV dataset", "url", config.DatasetURL, "timeout", config.FetchTimeout)
		return &SourceResult{Source: dataset.NewHTTPSource(config.DatasetURL, config.FetchTimeout)}, nil
	case FileSource:
		f.logger.Info("Using local CSV dataset", "path", config.DatasetFile)
		return &SourceResult{Source: dataset.FileSource{Path: config.DatasetFile}}, nil
	case SQLiteSource:
		return f.createSQLiteSource(config)
	case SheetsSource:
		return f.createSheetsSource(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported data source: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteSource(config Config) (*SourceResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// an empty snapshot is seeded from the remote dataset when one is configured
	var seed dataset.Source
	if config.DatasetURL != "" {
		seed = dataset.NewHTTPSource(config.DatasetURL, config.FetchTimeout)
	}

	f.logger.Info("Using SQLite dataset snapshot", "db_path", config.SQLiteDBPath, "seed", config.DatasetURL)

	return &SourceResult{
		Source:  adapters.NewSnapshotSource(repo, seed),
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, config Config) (*SourceResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		Range:           config.GoogleSheetRange,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Using Google Sheets dataset",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"range", config.GoogleSheetRange)

	return &SourceResult{Source: cli}, nil
}
