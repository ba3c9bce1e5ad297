// Package storage persists transactions. The SQLite repository is the
// production datastore; a mutex-guarded in-memory repository backs tests
// and the memory data backend.
package storage

import (
	"context"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
)

// SyncStatus tracks whether a row has been mirrored to the external sheet.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// Repository is the owner-scoped datastore contract. Update and Delete
// resolve by id AND owner so one user can never touch another's records;
// a miss is reported as *core.NotFoundError.
type Repository interface {
	Insert(ctx context.Context, tx core.Transaction) error
	Update(ctx context.Context, tx core.Transaction) error
	Delete(ctx context.Context, owner, id string) error
	DeleteAll(ctx context.Context, owner string) (int64, error)
	Get(ctx context.Context, owner, id string) (core.Transaction, error)
	ListByOwner(ctx context.Context, owner string) ([]core.Transaction, error)
	Close() error
}
