package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"bikeshare/internal/core"
	"bikeshare/internal/storage"
)

type staticSource struct {
	records []core.UsageRecord
	calls   int
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Load(ctx context.Context) ([]core.UsageRecord, error) {
	s.calls++
	return s.records, nil
}

func record(d core.Date, registered, casual int64) core.UsageRecord {
	return core.UsageRecord{
		Date:       d,
		Weekday:    int(d.Weekday()),
		Season:     core.Spring,
		Year:       core.Year2011,
		Month:      d.Month(),
		Registered: registered,
		Casual:     casual,
		Total:      registered + casual,
	}
}

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSnapshotSourceSeedsEmptySnapshot(t *testing.T) {
	repo := newRepo(t)
	seed := &staticSource{records: []core.UsageRecord{
		record(core.NewDate(2011, 1, 1), 13, 3),
		record(core.NewDate(2011, 1, 2), 32, 8),
	}}
	src := NewSnapshotSource(repo, seed)
	ctx := context.Background()

	got, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if seed.calls != 1 {
		t.Fatalf("seed loaded %d times, want 1", seed.calls)
	}

	// a populated snapshot is read without touching the seed
	if _, err := src.Load(ctx); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if seed.calls != 1 {
		t.Errorf("seed loaded again: %d calls", seed.calls)
	}
	if _, err := repo.LatestImport(ctx); err != nil {
		t.Errorf("LatestImport: %v", err)
	}
}

func TestSnapshotSourceWithoutSeed(t *testing.T) {
	src := NewSnapshotSource(newRepo(t), nil)

	_, err := src.Load(context.Background())
	if !errors.Is(err, storage.ErrNoImport) {
		t.Fatalf("error = %v, want ErrNoImport", err)
	}
}
