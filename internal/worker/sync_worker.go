// Package worker mirrors transaction mutations to the external sheet.
// It consumes events from the queue and runs a periodic catch-up pass so
// rows whose events were lost still converge.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/amqp"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/sheets"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/storage"
)

// EventSource is the slice of the AMQP client the worker consumes from.
type EventSource interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
}

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.TransactionWriter
	deleter   sheets.TransactionDeleter
	batchSize int
}

func NewSyncWorker(repo *storage.SQLiteRepository, writer sheets.TransactionWriter, deleter sheets.TransactionDeleter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   repo,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleEvent processes one queue event. Upserts re-read the row from
// the database so a stale message can never mirror stale data; deletes
// go straight to the sheet.
func (w *SyncWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	switch event.Kind {
	case amqp.EventUpsert:
		return w.syncUpsert(ctx, event.ID)
	case amqp.EventDelete:
		return w.syncDelete(ctx, event.ID)
	default:
		// Unknown kinds are acked, not requeued: redelivery cannot fix them.
		slog.WarnContext(ctx, "Ignoring event with unknown kind",
			"id", event.ID, "kind", event.Kind)
		return nil
	}
}

func (w *SyncWorker) syncUpsert(ctx context.Context, id string) error {
	tx, err := w.storage.GetByID(ctx, id)
	if err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			// Deleted between publish and consume; nothing to mirror.
			slog.InfoContext(ctx, "Transaction gone before sync, skipping", "id", id)
			return nil
		}
		return fmt.Errorf("load transaction %s: %w", id, err)
	}

	if _, err := w.writer.UpsertTransaction(ctx, tx); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("mirror transaction %s: %w", id, err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction %s synced: %w", id, err)
	}
	return nil
}

func (w *SyncWorker) syncDelete(ctx context.Context, id string) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No sheet deleter configured, skipping delete", "id", id)
		return nil
	}
	if err := w.deleter.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete mirrored transaction %s: %w", id, err)
	}
	return nil
}

// ProcessPending mirrors up to batchSize rows whose events never arrived.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending rows: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending sync rows", "count", len(pending))

	for _, tx := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.syncUpsert(ctx, tx.ID); err != nil {
			slog.ErrorContext(ctx, "Pending sync failed", "id", tx.ID, "error", err)
			// Keep going; the row stays pending or marked errored.
		}
	}
	return nil
}

// Run consumes queue events and runs the periodic catch-up until the
// context is cancelled. Both loops share the context's lifetime.
func (w *SyncWorker) Run(ctx context.Context, source EventSource, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := source.Consume(ctx, w.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
					slog.ErrorContext(ctx, "Periodic sync pass failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
