package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testTx(id, owner string) core.Transaction {
	return core.Transaction{
		ID:        id,
		Owner:     owner,
		Title:     "Rent",
		Amount:    decimal.RequireFromString("700.50"),
		Type:      core.Expense,
		Category:  core.CategoryHousing,
		Date:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestInsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := testTx("tx-1", "alice")
	if err := repo.Insert(ctx, want); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.Get(ctx, "alice", "tx-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != want.Title || !got.Amount.Equal(want.Amount) || got.Type != want.Type {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}
	if !got.Date.Equal(want.Date) {
		t.Fatalf("Date = %v, want %v", got.Date, want.Date)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestGetIsOwnerScoped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, testTx("tx-1", "alice")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var nf *core.NotFoundError
	if _, err := repo.Get(ctx, "bob", "tx-1"); !errors.As(err, &nf) {
		t.Fatalf("cross-owner Get error = %v, want NotFoundError", err)
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := testTx("tx-1", "alice")
	if err := repo.Insert(ctx, tx); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	tx.Title = "Office rent"
	tx.Amount = decimal.RequireFromString("800")
	tx.Category = core.CategoryOther
	if err := repo.Update(ctx, tx); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(ctx, "alice", "tx-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Office rent" || !got.Amount.Equal(decimal.RequireFromString("800")) || got.Category != core.CategoryOther {
		t.Fatalf("updated row = %+v", got)
	}
}

func TestUpdateMissingRow(t *testing.T) {
	repo := newTestRepo(t)

	var nf *core.NotFoundError
	if err := repo.Update(context.Background(), testTx("ghost", "alice")); !errors.As(err, &nf) {
		t.Fatalf("Update error = %v, want NotFoundError", err)
	}
}

func TestDeleteSemantics(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, testTx("tx-1", "alice")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := repo.Delete(ctx, "alice", "tx-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var nf *core.NotFoundError
	if err := repo.Delete(ctx, "alice", "tx-1"); !errors.As(err, &nf) {
		t.Fatalf("second Delete error = %v, want NotFoundError", err)
	}
}

func TestDeleteAllCountsAndScopes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a1", "a2"} {
		if err := repo.Insert(ctx, testTx(id, "alice")); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := repo.Insert(ctx, testTx("b1", "bob")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	n, err := repo.DeleteAll(ctx, "alice")
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if n != 2 {
		t.Fatalf("DeleteAll count = %d, want 2", n)
	}

	// Empty scope still succeeds.
	n, err = repo.DeleteAll(ctx, "alice")
	if err != nil || n != 0 {
		t.Fatalf("repeat DeleteAll = %d, %v; want 0, nil", n, err)
	}

	if _, err := repo.Get(ctx, "bob", "b1"); err != nil {
		t.Fatalf("bob's row should survive: %v", err)
	}
}

func TestListByOwnerOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := testTx("old", "alice")
	older.Date = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := testTx("new", "alice")
	newer.Date = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, tx := range []core.Transaction{older, newer} {
		if err := repo.Insert(ctx, tx); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	txs, err := repo.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != "new" || txs[1].ID != "old" {
		t.Fatalf("unexpected order: %+v", txs)
	}
}

func TestSyncStatusLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, testTx("tx-1", "alice")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "tx-1" {
		t.Fatalf("pending = %+v, want tx-1", pending)
	}

	if err := repo.MarkSynced(ctx, "tx-1"); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	pending, err = repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after MarkSynced = %+v, want none", pending)
	}

	// An update makes the row pending again so the mirror converges.
	tx := testTx("tx-1", "alice")
	tx.Title = "Changed"
	if err := repo.Update(ctx, tx); err != nil {
		t.Fatalf("Update: %v", err)
	}
	pending, err = repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending after update = %+v, want one row", pending)
	}
}
