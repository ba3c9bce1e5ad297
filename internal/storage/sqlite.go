package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
)

// SQLiteRepository stores transactions in a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const insertSQL = `
INSERT INTO transactions (id, owner, title, amount, type, category, date, created_at, sync_status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx, insertSQL,
		tx.ID,
		tx.Owner,
		tx.Title,
		tx.Amount.String(),
		string(tx.Type),
		string(tx.Category),
		tx.Date.UTC().Format(core.DateLayout),
		tx.CreatedAt.UTC().Format(time.RFC3339Nano),
		SyncPending,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"owner", tx.Owner,
		"type", tx.Type,
		"amount", tx.Amount.String())
	return nil
}

const updateSQL = `
UPDATE transactions
SET title = ?, amount = ?, type = ?, category = ?, date = ?, sync_status = ?
WHERE id = ? AND owner = ?`

// Update replaces every editable field of an owned row. The contract is
// full-replace: callers resupply all five fields on each edit.
func (r *SQLiteRepository) Update(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx, updateSQL,
		tx.Title,
		tx.Amount.String(),
		string(tx.Type),
		string(tx.Category),
		tx.Date.UTC().Format(core.DateLayout),
		SyncPending,
		tx.ID,
		tx.Owner,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rows affected: %w", err)
	}
	if n == 0 {
		return &core.NotFoundError{ID: tx.ID}
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if n == 0 {
		return &core.NotFoundError{ID: id}
	}
	return nil
}

// DeleteAll removes every row owned by the caller. Zero rows is success.
func (r *SQLiteRepository) DeleteAll(ctx context.Context, owner string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE owner = ?`, owner)
	if err != nil {
		return 0, fmt.Errorf("delete all transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all rows affected: %w", err)
	}
	slog.InfoContext(ctx, "Deleted all transactions", "owner", owner, "count", n)
	return n, nil
}

const selectColumns = `id, owner, title, amount, type, category, date, created_at`

func (r *SQLiteRepository) Get(ctx context.Context, owner, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE id = ? AND owner = ?`, id, owner)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, &core.NotFoundError{ID: id}
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE owner = ? ORDER BY date DESC, created_at DESC`,
		owner)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// GetByID loads a row regardless of owner. Only the sync worker uses it:
// sync messages identify rows by id alone, and the worker runs outside any
// user scope.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, &core.NotFoundError{ID: id}
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return tx, nil
}

// ListPendingSync returns rows not yet mirrored to the external sheet,
// oldest first, up to limit.
func (r *SQLiteRepository) ListPendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE sync_status = ? ORDER BY created_at ASC LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncDone, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		amount    string
		typ       string
		category  string
		date      string
		createdAt string
	)
	if err := row.Scan(&tx.ID, &tx.Owner, &tx.Title, &amount, &typ, &category, &date, &createdAt); err != nil {
		return core.Transaction{}, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	tx.Amount = d
	tx.Type = core.TransactionType(typ)
	tx.Category = core.Category(category)

	if tx.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored created_at %q: %w", createdAt, err)
	}
	return tx, nil
}
