package worker

import (
	"context"
	"fmt"
	"time"

	"bikeshare/internal/amqp"
	"bikeshare/internal/dataset"
	"bikeshare/internal/log"
	"bikeshare/internal/services"
	"bikeshare/internal/storage"
)

// Importer stores a dataset source as the current snapshot.
type Importer interface {
	Import(ctx context.Context, src dataset.Source, trigger string) (storage.ImportInfo, error)
	Stale(ctx context.Context, maxAge time.Duration, now time.Time) (bool, error)
}

// ImportWorker applies queued import requests and keeps the snapshot fresh.
type ImportWorker struct {
	importer      Importer
	refreshSource dataset.Source
	interval      time.Duration
	newSource     func(url string) dataset.Source
	now           func() time.Time
	logger        *log.Logger
}

// NewImportWorker creates a worker. refreshSource and interval drive the
// periodic refresh; a zero interval disables it.
func NewImportWorker(importer Importer, refreshSource dataset.Source, fetchTimeout, interval time.Duration) *ImportWorker {
	return &ImportWorker{
		importer:      importer,
		refreshSource: refreshSource,
		interval:      interval,
		newSource: func(url string) dataset.Source {
			return dataset.NewHTTPSource(url, fetchTimeout)
		},
		now:    time.Now,
		logger: log.ForComponent(log.ComponentWorker),
	}
}

// HandleImportMessage imports the CSV named by msg.
func (w *ImportWorker) HandleImportMessage(ctx context.Context, msg *amqp.ImportRequestMessage) error {
	w.logger.InfoContext(ctx, "Processing import request",
		"source_url", msg.SourceURL,
		"requested_by", msg.RequestedBy,
		"requested_at", msg.Timestamp)

	info, err := w.importer.Import(ctx, w.newSource(msg.SourceURL), services.TriggerQueue)
	if err != nil {
		return fmt.Errorf("import %s: %w", msg.SourceURL, err)
	}

	w.logger.InfoContext(ctx, "Import request applied",
		"import_id", info.ID,
		"records", info.Records,
		"min_date", info.MinDate,
		"max_date", info.MaxDate)
	return nil
}

// RefreshIfStale re-imports the refresh source when the snapshot is older
// than the refresh interval. It reports whether an import ran.
func (w *ImportWorker) RefreshIfStale(ctx context.Context) (bool, error) {
	if w.refreshSource == nil || w.interval <= 0 {
		return false, nil
	}
	stale, err := w.importer.Stale(ctx, w.interval, w.now())
	if err != nil {
		return false, err
	}
	if !stale {
		w.logger.DebugContext(ctx, "Snapshot is fresh, skipping refresh")
		return false, nil
	}
	if _, err := w.importer.Import(ctx, w.refreshSource, services.TriggerRefresh); err != nil {
		return true, fmt.Errorf("refresh from %s: %w", w.refreshSource.Name(), err)
	}
	return true, nil
}

// RunRefreshLoop checks for a stale snapshot at start and then on every
// tick until ctx is done. Refresh failures are logged and retried on the
// next tick.
func (w *ImportWorker) RunRefreshLoop(ctx context.Context) error {
	if w.refreshSource == nil || w.interval <= 0 {
		w.logger.InfoContext(ctx, "Periodic refresh disabled")
		<-ctx.Done()
		return nil
	}

	check := func() {
		if _, err := w.RefreshIfStale(ctx); err != nil && ctx.Err() == nil {
			w.logger.ErrorContext(ctx, "Snapshot refresh failed", "error", err)
		}
	}

	// tick faster than the interval so a missed refresh is retried
	tick := w.interval / 4
	if tick < time.Minute {
		tick = time.Minute
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Periodic refresh started",
		"source", w.refreshSource.Name(),
		"interval", w.interval.String())

	check()
	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Periodic refresh stopped")
			return nil
		case <-ticker.C:
			check()
		}
	}
}
