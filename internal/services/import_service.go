package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bikeshare/internal/core"
	"bikeshare/internal/dataset"
	"bikeshare/internal/log"
	"bikeshare/internal/metrics"
	"bikeshare/internal/storage"
)

// Import triggers, used as a metrics label.
const (
	TriggerCLI       = "cli"
	TriggerQueue     = "queue"
	TriggerRefresh   = "refresh"
	TriggerBootstrap = "bootstrap"
)

// ErrNoPublisher is returned by Enqueue when no broker is configured.
var ErrNoPublisher = errors.New("import queue not configured")

// SnapshotStore persists a full dataset snapshot.
type SnapshotStore interface {
	ReplaceRecords(ctx context.Context, source string, records []core.UsageRecord) (storage.ImportInfo, error)
	LatestImport(ctx context.Context) (storage.ImportInfo, error)
}

// ImportPublisher queues an import for a worker.
type ImportPublisher interface {
	PublishImportRequest(ctx context.Context, sourceURL, requestedBy string) error
}

// ImportService copies a dataset source into the SQLite snapshot, directly
// or through the import queue.
type ImportService struct {
	store     SnapshotStore
	publisher ImportPublisher
	logger    *log.StructuredLogger
}

func NewImportService(store SnapshotStore, publisher ImportPublisher) *ImportService {
	return &ImportService{
		store:     store,
		publisher: publisher,
		logger:    log.NewStructuredLogger(log.ForComponent(log.ComponentImport)),
	}
}

// Import loads src and replaces the stored snapshot with its records.
func (s *ImportService) Import(ctx context.Context, src dataset.Source, trigger string) (storage.ImportInfo, error) {
	start := time.Now()
	info, err := s.importOnce(ctx, src)
	metrics.RecordImport(trigger, err, time.Since(start))
	if err != nil {
		s.logger.LogError(ctx, "Dataset import failed", err, log.ComponentImport, log.OpImport,
			log.NewFields().WithDataset(src.Name(), 0))
		return storage.ImportInfo{}, err
	}
	s.logger.LogImportCompleted(ctx, info.ID, info.Source, info.Records, time.Since(start).Milliseconds())
	return info, nil
}

func (s *ImportService) importOnce(ctx context.Context, src dataset.Source) (storage.ImportInfo, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return storage.ImportInfo{}, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	if len(records) == 0 {
		return storage.ImportInfo{}, fmt.Errorf("load %s: %w", src.Name(), dataset.ErrEmptyDataset)
	}
	info, err := s.store.ReplaceRecords(ctx, src.Name(), records)
	if err != nil {
		return storage.ImportInfo{}, fmt.Errorf("store snapshot: %w", err)
	}
	return info, nil
}

// Stale reports whether the latest snapshot is older than maxAge or missing.
func (s *ImportService) Stale(ctx context.Context, maxAge time.Duration, now time.Time) (bool, error) {
	info, err := s.store.LatestImport(ctx)
	if errors.Is(err, storage.ErrNoImport) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("latest import: %w", err)
	}
	return now.Sub(info.ImportedAt) >= maxAge, nil
}

// Enqueue asks a worker to import sourceURL.
func (s *ImportService) Enqueue(ctx context.Context, sourceURL, requestedBy string) error {
	if s.publisher == nil {
		return ErrNoPublisher
	}
	if sourceURL == "" {
		return errors.New("source url is required")
	}
	if err := s.publisher.PublishImportRequest(ctx, sourceURL, requestedBy); err != nil {
		return fmt.Errorf("enqueue import: %w", err)
	}
	return nil
}
