package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bikeshare/internal/adapters"
	"bikeshare/internal/config"
	"bikeshare/internal/dataset"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("nil config must fail")
	}

	app := config.Defaults()
	app.DataSource = "postgres"
	if _, err := FromAppConfig(&app); err == nil {
		t.Fatalf("unknown source must fail")
	}

	app = config.Defaults()
	cfg, err := FromAppConfig(&app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != CSVSource || cfg.DatasetURL != dataset.DefaultURL || cfg.FetchTimeout != 30*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"csv ok", Config{Type: CSVSource, DatasetURL: "https://x/y.csv"}, ""},
		{"csv without url", Config{Type: CSVSource}, "dataset URL"},
		{"file without path", Config{Type: FileSource}, "dataset file"},
		{"sqlite without path", Config{Type: SQLiteSource}, "SQLite"},
		{"sheets without id", Config{Type: SheetsSource, GoogleSheetRange: "A:Q", GoogleServiceAccountJSON: "{}"}, "Spreadsheet ID"},
		{"sheets without credentials", Config{Type: SheetsSource, GoogleSpreadsheetID: "id", GoogleSheetRange: "A:Q"}, "service account"},
		{"unknown", Config{Type: "memory"}, "invalid data source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSource(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	res, err := f.CreateSource(ctx, Config{Type: CSVSource, DatasetURL: "https://example.com/hour.csv", FetchTimeout: time.Second})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if _, ok := res.Source.(*dataset.HTTPSource); !ok || res.Close() != nil {
		t.Fatalf("csv source has type %T", res.Source)
	}

	res, err = f.CreateSource(ctx, Config{Type: FileSource, DatasetFile: "hour.csv"})
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if res.Source.Name() != "hour.csv" {
		t.Fatalf("file source name %q", res.Source.Name())
	}

	dbPath := filepath.Join(t.TempDir(), "bikeshare.db")
	res, err = f.CreateSource(ctx, Config{Type: SQLiteSource, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := res.Source.(*adapters.SnapshotSource); !ok {
		t.Fatalf("sqlite source has type %T", res.Source)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("close sqlite: %v", err)
	}

	if _, err := f.CreateSource(ctx, Config{Type: SheetsSource, GoogleSpreadsheetID: "id", GoogleSheetRange: "A:Q"}); err == nil {
		t.Fatalf("sheets without credentials must fail")
	}
}
