package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bikeshare/internal/core"
	"bikeshare/internal/log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNoImport is returned when the snapshot has never been populated.
var ErrNoImport = errors.New("no dataset import recorded")

// ImportInfo describes the snapshot currently stored.
type ImportInfo struct {
	ID         string
	Source     string
	Records    int
	MinDate    core.Date
	MaxDate    core.Date
	ImportedAt time.Time
}

// SQLiteRepository keeps a local snapshot of the usage table.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	path    string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		path:    dbPath,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Name implements dataset.Source.
func (r *SQLiteRepository) Name() string {
	return "sqlite:" + r.path
}

// ReplaceRecords swaps the stored snapshot for records in one transaction.
func (r *SQLiteRepository) ReplaceRecords(ctx context.Context, source string, records []core.UsageRecord) (ImportInfo, error) {
	if len(records) == 0 {
		return ImportInfo{}, errors.New("refusing to store an empty dataset")
	}

	info := ImportInfo{
		ID:         uuid.NewString(),
		Source:     source,
		Records:    len(records),
		MinDate:    records[0].Date,
		MaxDate:    records[0].Date,
		ImportedAt: time.Now().UTC(),
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return ImportInfo{}, fmt.Errorf("invalid record %s: %w", rec.Date, err)
		}
		if rec.Date.Before(info.MinDate) {
			info.MinDate = rec.Date
		}
		if rec.Date.After(info.MaxDate) {
			info.MaxDate = rec.Date
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportInfo{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := r.queries.WithTx(tx)
	if err := q.DeleteUsageRecords(ctx); err != nil {
		return ImportInfo{}, fmt.Errorf("clear usage records: %w", err)
	}
	if err := q.DeleteImports(ctx); err != nil {
		return ImportInfo{}, fmt.Errorf("clear imports: %w", err)
	}
	if err := q.CreateImport(ctx, Import{
		ID:         info.ID,
		Source:     info.Source,
		Records:    int64(info.Records),
		MinDate:    info.MinDate.String(),
		MaxDate:    info.MaxDate.String(),
		ImportedAt: info.ImportedAt.Format(time.RFC3339Nano),
	}); err != nil {
		return ImportInfo{}, fmt.Errorf("create import: %w", err)
	}

	stmt, err := q.PrepareInsertUsageRecord(ctx)
	if err != nil {
		return ImportInfo{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if err := execInsertUsageRecord(ctx, stmt, info.ID, toRow(rec)); err != nil {
			return ImportInfo{}, fmt.Errorf("insert record %s: %w", rec.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportInfo{}, fmt.Errorf("commit import: %w", err)
	}

	log.ForComponent(log.ComponentStorage).InfoContext(ctx, "Dataset snapshot stored",
		"import_id", info.ID,
		"source", source,
		"records", info.Records,
		"min_date", info.MinDate.String(),
		"max_date", info.MaxDate.String())

	return info, nil
}

// Load implements dataset.Source.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.UsageRecord, error) {
	rows, err := r.queries.ListUsageRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	out := make([]core.UsageRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// LatestImport returns the metadata of the stored snapshot.
func (r *SQLiteRepository) LatestImport(ctx context.Context) (ImportInfo, error) {
	imp, err := r.queries.LatestImport(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportInfo{}, ErrNoImport
	}
	if err != nil {
		return ImportInfo{}, fmt.Errorf("latest import: %w", err)
	}
	minDate, err := core.ParseDate(imp.MinDate)
	if err != nil {
		return ImportInfo{}, err
	}
	maxDate, err := core.ParseDate(imp.MaxDate)
	if err != nil {
		return ImportInfo{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, imp.ImportedAt)
	if err != nil {
		return ImportInfo{}, fmt.Errorf("parse imported_at: %w", err)
	}
	return ImportInfo{
		ID:         imp.ID,
		Source:     imp.Source,
		Records:    int(imp.Records),
		MinDate:    minDate,
		MaxDate:    maxDate,
		ImportedAt: at,
	}, nil
}

func toRow(rec core.UsageRecord) UsageRecordRow {
	row := UsageRecordRow{
		Dteday:     rec.Date.String(),
		Weekday:    int64(rec.Weekday),
		Workingday: boolToInt(rec.WorkingDay),
		Holiday:    boolToInt(rec.Holiday),
		Season:     int64(rec.Season),
		Yr:         int64(rec.Year),
		Mnth:       int64(rec.Month),
		Registered: rec.Registered,
		Casual:     rec.Casual,
		Cnt:        rec.Total,
	}
	if rec.HasHour {
		row.Hr = sql.NullInt64{Int64: int64(rec.Hour), Valid: true}
	}
	return row
}

func fromRow(row UsageRecordRow) (core.UsageRecord, error) {
	d, err := core.ParseDate(row.Dteday)
	if err != nil {
		return core.UsageRecord{}, fmt.Errorf("stored record: %w", err)
	}
	return core.UsageRecord{
		Date:       d,
		Hour:       int(row.Hr.Int64),
		HasHour:    row.Hr.Valid,
		Weekday:    int(row.Weekday),
		WorkingDay: row.Workingday == 1,
		Holiday:    row.Holiday == 1,
		Season:     core.Season(row.Season),
		Year:       core.YearCode(row.Yr),
		Month:      int(row.Mnth),
		Registered: row.Registered,
		Casual:     row.Casual,
		Total:      row.Cnt,
	}, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
