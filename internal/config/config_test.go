package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Defaults()
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown data source",
			mutate:      func(c *Config) { c.DataSource = "postgres" },
			wantErr:     true,
			errorString: "invalid data source 'postgres'",
		},
		{
			name:        "csv source with ftp url",
			mutate:      func(c *Config) { c.DatasetURL = "ftp://example.com/hour.csv" },
			wantErr:     true,
			errorString: "must be 'http' or 'https'",
		},
		{
			name:        "csv source without url",
			mutate:      func(c *Config) { c.DatasetURL = "" },
			wantErr:     true,
			errorString: "dataset URL cannot be empty",
		},
		{
			name: "file source with missing file",
			mutate: func(c *Config) {
				c.DataSource = SourceFile
				c.DatasetFile = "/non/existent/hour.csv"
			},
			wantErr:     true,
			errorString: "dataset file is not readable",
		},
		{
			name: "sheets source without credentials",
			mutate: func(c *Config) {
				c.DataSource = SourceSheets
				c.GoogleSpreadsheetID = "abc"
			},
			wantErr:     true,
			errorString: "GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON",
		},
		{
			name: "sheets source with inline credentials",
			mutate: func(c *Config) {
				c.DataSource = SourceSheets
				c.GoogleSpreadsheetID = "abc"
				c.GoogleServiceAccountJSON = "{}"
			},
			wantErr: false,
		},
		{
			name:        "invalid AMQP scheme",
			mutate:      func(c *Config) { c.AMQPURL = "http://localhost:5672/" },
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http'",
		},
		{
			name:        "AMQP without queue",
			mutate:      func(c *Config) { c.AMQPQueue = "" },
			wantErr:     true,
			errorString: "AMQP queue name cannot be empty",
		},
		{
			name:    "AMQP disabled",
			mutate:  func(c *Config) { c.AMQPURL = ""; c.AMQPQueue = "" },
			wantErr: false,
		},
		{
			name:        "zero cache size",
			mutate:      func(c *Config) { c.CacheSize = 0 },
			wantErr:     true,
			errorString: "invalid cache size 0",
		},
		{
			name:        "short refresh interval",
			mutate:      func(c *Config) { c.RefreshInterval = 10 * time.Second },
			wantErr:     true,
			errorString: "invalid refresh interval",
		},
		{
			name:    "refresh disabled",
			mutate:  func(c *Config) { c.RefreshInterval = 0 },
			wantErr: false,
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name: "multiple errors",
			mutate: func(c *Config) {
				c.Port = "0"
				c.LogFormat = "xml"
			},
			wantErr:     true,
			errorString: "configuration validation failed:\n- invalid port 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Config.Validate() error = %q, want it to contain %q", err.Error(), tt.errorString)
			}
		})
	}
}

func TestConfig_ValidateWithFiles(t *testing.T) {
	tmpDir := t.TempDir()
	dataFile := filepath.Join(tmpDir, "hour.csv")
	credFile := filepath.Join(tmpDir, "sa.json")
	if err := os.WriteFile(dataFile, []byte("dteday\n"), 0644); err != nil {
		t.Fatalf("Failed to create test data file: %v", err)
	}
	if err := os.WriteFile(credFile, []byte(`{"type":"service_account"}`), 0644); err != nil {
		t.Fatalf("Failed to create test credentials file: %v", err)
	}

	fileCfg := validConfig()
	fileCfg.DataSource = SourceFile
	fileCfg.DatasetFile = dataFile
	if err := fileCfg.Validate(); err != nil {
		t.Errorf("file source: unexpected error %v", err)
	}

	sheetsCfg := validConfig()
	sheetsCfg.DataSource = SourceSheets
	sheetsCfg.GoogleSpreadsheetID = "123456789"
	sheetsCfg.GoogleServiceAccountFile = credFile
	if err := sheetsCfg.Validate(); err != nil {
		t.Errorf("sheets source: unexpected error %v", err)
	}

	sqliteCfg := validConfig()
	sqliteCfg.DataSource = SourceSQLite
	sqliteCfg.SQLiteDBPath = filepath.Join(tmpDir, "nested", "bikeshare.db")
	if err := sqliteCfg.Validate(); err != nil {
		t.Errorf("sqlite source: unexpected error %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "nested")); err != nil {
		t.Errorf("sqlite directory was not created: %v", err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "DATA_SOURCE", "DATASET_URL", "DATASET_FILE",
		"FETCH_TIMEOUT", "SQLITE_DB_PATH", "AMQP_URL", "CACHE_SIZE", "CACHE_TTL",
		"REFRESH_INTERVAL", "LOG_LEVEL", "LOG_FORMAT", "GOOGLE_SERVICE_ACCOUNT_FILE",
		"GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_APPLICATION_CREDENTIALS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataSource != SourceCSV {
			t.Errorf("Load() DataSource = %v, want csv", cfg.DataSource)
		}
		if cfg.AMQPQueue != "dataset_import" || cfg.AMQPExchange != "bikeshare" {
			t.Errorf("Load() AMQP names = %v/%v", cfg.AMQPExchange, cfg.AMQPQueue)
		}
		if cfg.CacheTTL != 10*time.Minute {
			t.Errorf("Load() CacheTTL = %v, want 10m", cfg.CacheTTL)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_SOURCE", "SQLite")
		t.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		t.Setenv("CACHE_SIZE", "25")
		t.Setenv("FETCH_TIMEOUT", "45s")
		t.Setenv("LOG_FORMAT", "JSON")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataSource != SourceSQLite {
			t.Errorf("Load() DataSource = %v, want sqlite", cfg.DataSource)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("Load() SQLiteDBPath = %v", cfg.SQLiteDBPath)
		}
		if cfg.CacheSize != 25 {
			t.Errorf("Load() CacheSize = %v, want 25", cfg.CacheSize)
		}
		if cfg.FetchTimeout != 45*time.Second {
			t.Errorf("Load() FetchTimeout = %v, want 45s", cfg.FetchTimeout)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("Load() LogFormat = %v, want json", cfg.LogFormat)
		}
	})

	t.Run("invalid numbers fall back", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CACHE_SIZE", "lots")
		t.Setenv("CACHE_TTL", "soon")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.CacheSize != 128 || cfg.CacheTTL != 10*time.Minute {
			t.Errorf("Load() should keep defaults, got %d %v", cfg.CacheSize, cfg.CacheTTL)
		}
	})

	t.Run("yaml file overlay", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "bikeshare.yaml")
		yamlDoc := "port: \"7000\"\ndata_source: file\ndataset_file: /srv/hour.csv\ncache_ttl: 90s\n"
		if err := os.WriteFile(path, []byte(yamlDoc), 0644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("PORT", "7100")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != "7100" {
			t.Errorf("environment should win over file, got port %v", cfg.Port)
		}
		if cfg.DataSource != SourceFile || cfg.DatasetFile != "/srv/hour.csv" {
			t.Errorf("file values not applied: %+v", cfg)
		}
		if cfg.CacheTTL != 90*time.Second {
			t.Errorf("Load() CacheTTL = %v, want 90s", cfg.CacheTTL)
		}
		if cfg.CacheSize != 128 {
			t.Errorf("unset keys should keep defaults, got %d", cfg.CacheSize)
		}
	})

	t.Run("broken yaml", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "broken.yaml")
		if err := os.WriteFile(path, []byte("port: [\n"), 0644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("CONFIG_FILE", path)
		if _, err := Load(); err == nil {
			t.Fatalf("expected parse error")
		}
	})
}
