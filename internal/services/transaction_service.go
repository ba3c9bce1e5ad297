// Package services orchestrates transaction mutations and reads across
// the repository, the query engine and the event bus.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/amqp"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/engine"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/storage"
)

// EventPublisher is the slice of the AMQP client the service needs.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionService is the mutation and read entry point. Every
// operation is owner-scoped and fails closed when no owner is resolvable.
type TransactionService struct {
	repo      storage.Repository
	publisher EventPublisher
	now       func() time.Time
}

func NewTransactionService(repo storage.Repository, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock fixes the service clock. Tests use it to pin "current year".
func (s *TransactionService) WithClock(now func() time.Time) *TransactionService {
	s.now = now
	return s
}

// Create validates the input and inserts a new transaction owned by the
// caller. The local write is authoritative: a failed event publish is
// logged and does not fail the request.
func (s *TransactionService) Create(ctx context.Context, owner string, in core.TransactionInput) (core.Transaction, error) {
	if owner == "" {
		return core.Transaction{}, &core.AuthError{}
	}
	if verr := in.Validate(); verr != nil {
		return core.Transaction{}, verr
	}

	date, _ := core.ParseDate(in.Date) // validated above

	tx := core.Transaction{
		ID:        uuid.NewString(),
		Owner:     owner,
		Title:     in.Title,
		Amount:    in.Amount,
		Type:      in.Type,
		Category:  in.Category,
		Date:      date,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Insert(ctx, tx); err != nil {
		return core.Transaction{}, &core.DependencyError{Op: "insert transaction", Err: err}
	}

	s.publish(ctx, tx.ID, amqp.EventUpsert)

	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID,
		"owner", owner,
		"type", tx.Type,
		"category", tx.Category)
	return tx, nil
}

// Update replaces all five editable fields of an owned transaction. The
// contract is full-replace: there is no partial patch, so stale forms
// overwrite rather than merge (last write wins, same as the datastore).
func (s *TransactionService) Update(ctx context.Context, owner, id string, in core.TransactionInput) (core.Transaction, error) {
	if owner == "" {
		return core.Transaction{}, &core.AuthError{}
	}
	if id == "" {
		verr := &core.ValidationError{}
		verr.Add("id", "Transaction ID is required")
		return core.Transaction{}, verr
	}
	if verr := in.Validate(); verr != nil {
		return core.Transaction{}, verr
	}

	date, _ := core.ParseDate(in.Date)

	tx := core.Transaction{
		ID:       id,
		Owner:    owner,
		Title:    in.Title,
		Amount:   in.Amount,
		Type:     in.Type,
		Category: in.Category,
		Date:     date,
	}

	if err := s.repo.Update(ctx, tx); err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, &core.DependencyError{Op: "update transaction", Err: err}
	}

	s.publish(ctx, id, amqp.EventUpsert)
	return s.get(ctx, owner, id)
}

// Delete removes one owned transaction. Deleting a nonexistent id is a
// NotFoundError, not a silent success.
func (s *TransactionService) Delete(ctx context.Context, owner, id string) error {
	if owner == "" {
		return &core.AuthError{}
	}
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return &core.DependencyError{Op: "delete transaction", Err: err}
	}
	s.publish(ctx, id, amqp.EventDelete)
	return nil
}

// DeleteAll removes every transaction owned by the caller and reports
// the count. Zero records is still success.
func (s *TransactionService) DeleteAll(ctx context.Context, owner string) (int64, error) {
	if owner == "" {
		return 0, &core.AuthError{}
	}
	n, err := s.repo.DeleteAll(ctx, owner)
	if err != nil {
		return 0, &core.DependencyError{Op: "delete all transactions", Err: err}
	}
	return n, nil
}

// List returns the caller's transactions filtered and ordered by the
// engine. Malformed filter values degrade to defaults, never to errors.
func (s *TransactionService) List(ctx context.Context, owner string, f engine.Filter) ([]core.Transaction, error) {
	if owner == "" {
		return nil, &core.AuthError{}
	}
	txs, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, &core.DependencyError{Op: "list transactions", Err: err}
	}
	return engine.Apply(txs, f, s.now()), nil
}

// Summarize computes the dashboard summary over the caller's full
// transaction set.
func (s *TransactionService) Summarize(ctx context.Context, owner string) (engine.Summary, error) {
	if owner == "" {
		return engine.Summary{}, &core.AuthError{}
	}
	txs, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return engine.Summary{}, &core.DependencyError{Op: "summarize transactions", Err: err}
	}
	return engine.Summarize(txs), nil
}

// GroupedByMonth lists with the filter applied, then buckets by month
// using the supplied labeler.
func (s *TransactionService) GroupedByMonth(ctx context.Context, owner string, f engine.Filter, label engine.Labeler) ([]engine.MonthGroup, error) {
	txs, err := s.List(ctx, owner, f)
	if err != nil {
		return nil, err
	}
	return engine.GroupByMonth(txs, label), nil
}

func (s *TransactionService) get(ctx context.Context, owner, id string) (core.Transaction, error) {
	tx, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, &core.DependencyError{Op: "get transaction", Err: err}
	}
	return tx, nil
}

func (s *TransactionService) publish(ctx context.Context, id, kind string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, amqp.NewTransactionEvent(id, kind)); err != nil {
		// The record is already persisted locally; the periodic sync
		// pass picks up what the queue missed.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "kind", kind, "error", err)
	}
}

// Close releases the repository and publisher.
func (s *TransactionService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if closer, ok := s.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
