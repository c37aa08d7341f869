package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cecyt9/prefect-gate-api/pkg/jobs"
	"github.com/cecyt9/prefect-gate-api/pkg/storage"
)

type archivePayload struct {
	Filename string
	Data     []byte
}

// ExportArchiver keeps best-effort disk copies of rendered exports. Writes
// run on a background queue so a slow disk never delays the download
// response.
type ExportArchiver struct {
	queue  *jobs.Queue
	store  *storage.LocalStorage
	logger *zap.Logger
}

// NewExportArchiver constructs an archiver backed by the given storage.
func NewExportArchiver(store *storage.LocalStorage, logger *zap.Logger) *ExportArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &ExportArchiver{store: store, logger: logger}
	a.queue = jobs.NewQueue("export-archive", a.handle, jobs.QueueConfig{
		Workers: 1,
		Logger:  logger,
	})
	return a
}

// Start launches the archive workers.
func (a *ExportArchiver) Start(ctx context.Context) {
	a.queue.Start(ctx)
}

// Stop drains the archive workers.
func (a *ExportArchiver) Stop() {
	a.queue.Stop()
}

// Archive enqueues a disk copy of a rendered export. Failures are logged,
// never surfaced to the caller.
func (a *ExportArchiver) Archive(filename string, data []byte) {
	if a == nil {
		return
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	err := a.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "export-archive",
		Payload: archivePayload{Filename: filename, Data: copied},
	})
	if err != nil {
		a.logger.Warn("failed to enqueue export archive", zap.String("filename", filename), zap.Error(err))
	}
}

// Cleanup removes archived files older than the TTL.
func (a *ExportArchiver) Cleanup(ttl time.Duration) {
	if a == nil || ttl <= 0 {
		return
	}
	deleted, err := a.store.CleanupOlderThan(ttl)
	if err != nil {
		a.logger.Warn("failed to clean export archive", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		a.logger.Info("cleaned export archive", zap.Int("deleted", len(deleted)))
	}
}

func (a *ExportArchiver) handle(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(archivePayload)
	if !ok {
		return fmt.Errorf("unexpected archive payload type %T", job.Payload)
	}
	if _, err := a.store.Save(payload.Filename, payload.Data); err != nil {
		return err
	}
	a.logger.Debug("archived export", zap.String("filename", payload.Filename))
	return nil
}
