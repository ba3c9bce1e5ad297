package worker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/amqp"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/storage"
)

type fakeSheet struct {
	mu       sync.Mutex
	rows     map[string]core.Transaction
	upserts  int
	deleted  []string
	writeErr error
}

func (f *fakeSheet) UpsertTransaction(_ context.Context, tx core.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return "", f.writeErr
	}
	if f.rows == nil {
		f.rows = make(map[string]core.Transaction)
	}
	f.rows[tx.ID] = tx
	f.upserts++
	return "row-1", nil
}

func (f *fakeSheet) DeleteTransaction(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func newWorkerFixture(t *testing.T) (*storage.SQLiteRepository, *fakeSheet, *SyncWorker) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	sheet := &fakeSheet{}
	return repo, sheet, NewSyncWorker(repo, sheet, sheet, 10)
}

func seedTx(t *testing.T, repo *storage.SQLiteRepository, id string) {
	t.Helper()

	err := repo.Insert(context.Background(), core.Transaction{
		ID:        id,
		Owner:     "alice",
		Title:     "Rent",
		Amount:    decimal.RequireFromString("700"),
		Type:      core.Expense,
		Category:  core.CategoryHousing,
		Date:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
}

func TestHandleEventUpsert(t *testing.T) {
	repo, sheet, w := newWorkerFixture(t)
	ctx := context.Background()
	seedTx(t, repo, "tx-1")

	event := amqp.NewTransactionEvent("tx-1", amqp.EventUpsert)
	if err := w.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(sheet.rows) != 1 {
		t.Fatalf("rows = %v, want one row for tx-1", sheet.rows)
	}
	if _, ok := sheet.rows["tx-1"]; !ok {
		t.Fatalf("rows = %v, want tx-1 mirrored", sheet.rows)
	}

	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("row still pending after sync: %v", pending)
	}
}

func TestHandleEventUpsertMissingRowIsSkipped(t *testing.T) {
	_, sheet, w := newWorkerFixture(t)

	// A delete raced the upsert event; nothing to mirror, nothing to retry.
	event := amqp.NewTransactionEvent("ghost", amqp.EventUpsert)
	if err := w.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(sheet.rows) != 0 {
		t.Fatalf("rows = %v, want none", sheet.rows)
	}
}

func TestEditedTransactionDoesNotDuplicateRow(t *testing.T) {
	repo, sheet, w := newWorkerFixture(t)
	ctx := context.Background()
	seedTx(t, repo, "tx-1")

	event := amqp.NewTransactionEvent("tx-1", amqp.EventUpsert)
	if err := w.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	edited, err := repo.GetByID(ctx, "tx-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	edited.Title = "Rent (updated)"
	if err := repo.Update(ctx, edited); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := w.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent after edit: %v", err)
	}

	if len(sheet.rows) != 1 {
		t.Fatalf("rows = %v, want a single row for tx-1", sheet.rows)
	}
	if got := sheet.rows["tx-1"].Title; got != "Rent (updated)" {
		t.Fatalf("mirrored title = %q, want the edited title", got)
	}
	if sheet.upserts != 2 {
		t.Fatalf("upserts = %d, want 2", sheet.upserts)
	}
}

func TestHandleEventDelete(t *testing.T) {
	_, sheet, w := newWorkerFixture(t)

	event := amqp.NewTransactionEvent("tx-9", amqp.EventDelete)
	if err := w.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(sheet.deleted) != 1 || sheet.deleted[0] != "tx-9" {
		t.Fatalf("deleted = %v, want [tx-9]", sheet.deleted)
	}
}

func TestHandleEventUnknownKindIsAcked(t *testing.T) {
	_, _, w := newWorkerFixture(t)

	event := amqp.NewTransactionEvent("tx-1", "reindex")
	if err := w.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown kind should not requeue: %v", err)
	}
}

func TestWriteFailureMarksSyncError(t *testing.T) {
	repo, sheet, w := newWorkerFixture(t)
	ctx := context.Background()
	seedTx(t, repo, "tx-1")
	sheet.writeErr = errors.New("sheet unavailable")

	event := amqp.NewTransactionEvent("tx-1", amqp.EventUpsert)
	if err := w.HandleEvent(ctx, event); err == nil {
		t.Fatal("expected write failure to propagate")
	}

	// The row leaves pending so the batch pass does not spin on it.
	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending = %v, want none after sync error", pending)
	}
}

func TestProcessPendingMirrorsBacklog(t *testing.T) {
	repo, sheet, w := newWorkerFixture(t)
	ctx := context.Background()
	seedTx(t, repo, "tx-1")
	seedTx(t, repo, "tx-2")

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}

	if len(sheet.rows) != 2 {
		t.Fatalf("rows = %v, want two rows", sheet.rows)
	}
	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("backlog not drained: %v", pending)
	}
}
