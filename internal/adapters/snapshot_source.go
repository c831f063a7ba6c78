package adapters

import (
	"context"
	"errors"
	"fmt"

	"bikeshare/internal/core"
	"bikeshare/internal/dataset"
	"bikeshare/internal/services"
	"bikeshare/internal/storage"
)

// Snapshot is the storage side of SnapshotSource.
type Snapshot interface {
	services.SnapshotStore
	Load(ctx context.Context) ([]core.UsageRecord, error)
	Name() string
}

// SnapshotSource adapts the SQLite snapshot to dataset.Source. When no import
// has been recorded yet it first seeds the snapshot from seed, so a fresh
// database behaves like the remote dataset.
type SnapshotSource struct {
	snapshot Snapshot
	importer *services.ImportService
	seed     dataset.Source
}

// NewSnapshotSource returns a source reading snap. seed may be nil, in which
// case an empty snapshot fails to load.
func NewSnapshotSource(snap Snapshot, seed dataset.Source) *SnapshotSource {
	return &SnapshotSource{
		snapshot: snap,
		importer: services.NewImportService(snap, nil),
		seed:     seed,
	}
}

// Name implements dataset.Source
func (s *SnapshotSource) Name() string {
	return s.snapshot.Name()
}

// Load implements dataset.Source
func (s *SnapshotSource) Load(ctx context.Context) ([]core.UsageRecord, error) {
	_, err := s.snapshot.LatestImport(ctx)
	switch {
	case errors.Is(err, storage.ErrNoImport):
		if s.seed == nil {
			return nil, fmt.Errorf("snapshot %s: %w", s.snapshot.Name(), err)
		}
		if _, err := s.importer.Import(ctx, s.seed, services.TriggerBootstrap); err != nil {
			return nil, fmt.Errorf("seed snapshot: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("snapshot %s: %w", s.snapshot.Name(), err)
	}
	return s.snapshot.Load(ctx)
}
