package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Import struct {
	ID         string
	Source     string
	Records    int64
	MinDate    string
	MaxDate    string
	ImportedAt string
}

type UsageRecordRow struct {
	Dteday     string
	Hr         sql.NullInt64
	Weekday    int64
	Workingday int64
	Holiday    int64
	Season     int64
	Yr         int64
	Mnth       int64
	Registered int64
	Casual     int64
	Cnt        int64
}

const createImport = `INSERT INTO imports (id, source, records, min_date, max_date, imported_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateImport(ctx context.Context, arg Import) error {
	_, err := q.db.ExecContext(ctx, createImport,
		arg.ID, arg.Source, arg.Records, arg.MinDate, arg.MaxDate, arg.ImportedAt)
	return err
}

const deleteImports = `DELETE FROM imports`

func (q *Queries) DeleteImports(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteImports)
	return err
}

const deleteUsageRecords = `DELETE FROM usage_records`

func (q *Queries) DeleteUsageRecords(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteUsageRecords)
	return err
}

const insertUsageRecord = `INSERT INTO usage_records
(import_id, dteday, hr, weekday, workingday, holiday, season, yr, mnth, registered, casual, cnt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// PrepareInsertUsageRecord returns a statement for bulk inserts inside a transaction.
func (q *Queries) PrepareInsertUsageRecord(ctx context.Context) (*sql.Stmt, error) {
	return q.db.PrepareContext(ctx, insertUsageRecord)
}

func execInsertUsageRecord(ctx context.Context, stmt *sql.Stmt, importID string, r UsageRecordRow) error {
	_, err := stmt.ExecContext(ctx, importID,
		r.Dteday, r.Hr, r.Weekday, r.Workingday, r.Holiday,
		r.Season, r.Yr, r.Mnth, r.Registered, r.Casual, r.Cnt)
	return err
}

const listUsageRecords = `SELECT dteday, hr, weekday, workingday, holiday, season, yr, mnth, registered, casual, cnt
FROM usage_records
ORDER BY dteday, id`

func (q *Queries) ListUsageRecords(ctx context.Context) ([]UsageRecordRow, error) {
	rows, err := q.db.QueryContext(ctx, listUsageRecords)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []UsageRecordRow
	for rows.Next() {
		var i UsageRecordRow
		if err := rows.Scan(
			&i.Dteday,
			&i.Hr,
			&i.Weekday,
			&i.Workingday,
			&i.Holiday,
			&i.Season,
			&i.Yr,
			&i.Mnth,
			&i.Registered,
			&i.Casual,
			&i.Cnt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const latestImport = `SELECT id, source, records, min_date, max_date, imported_at
FROM imports
ORDER BY imported_at DESC
LIMIT 1`

func (q *Queries) LatestImport(ctx context.Context) (Import, error) {
	row := q.db.QueryRowContext(ctx, latestImport)
	var i Import
	err := row.Scan(&i.ID, &i.Source, &i.Records, &i.MinDate, &i.MaxDate, &i.ImportedAt)
	return i, err
}
