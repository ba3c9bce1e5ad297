// Package memory is an in-memory transaction repository. It backs the
// memory data backend and the unit tests; semantics mirror the SQLite
// repository, including owner scoping and not-found reporting.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
)

type Store struct {
	mu  sync.RWMutex
	txs map[string]core.Transaction // key: transaction id
}

func NewStore() *Store {
	return &Store{txs: make(map[string]core.Transaction)}
}

func (s *Store) Insert(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[tx.ID] = tx
	return nil
}

func (s *Store) Update(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.txs[tx.ID]
	if !ok || existing.Owner != tx.Owner {
		return &core.NotFoundError{ID: tx.ID}
	}
	// Full-replace of the editable fields; id, owner and creation time
	// are immutable.
	existing.Title = tx.Title
	existing.Amount = tx.Amount
	existing.Type = tx.Type
	existing.Category = tx.Category
	existing.Date = tx.Date
	s.txs[tx.ID] = existing
	return nil
}

func (s *Store) Delete(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.txs[id]
	if !ok || existing.Owner != owner {
		return &core.NotFoundError{ID: id}
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) DeleteAll(_ context.Context, owner string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, tx := range s.txs {
		if tx.Owner == owner {
			delete(s.txs, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) Get(_ context.Context, owner, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txs[id]
	if !ok || tx.Owner != owner {
		return core.Transaction{}, &core.NotFoundError{ID: id}
	}
	return tx, nil
}

func (s *Store) ListByOwner(_ context.Context, owner string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var txs []core.Transaction
	for _, tx := range s.txs {
		if tx.Owner == owner {
			txs = append(txs, tx)
		}
	}
	sort.SliceStable(txs, func(i, j int) bool {
		di, dj := txs[i].EffectiveDate(), txs[j].EffectiveDate()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	return txs, nil
}

func (s *Store) Close() error { return nil }
