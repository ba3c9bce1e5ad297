// Package backend assembles the storage and messaging stack the
// transaction service runs on, selected by configuration.
package backend

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/amqp"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/config"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/services"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/storage"
	"github.com/TahaEssaouir/Finance-Dashboard/internal/storage/memory"
)

type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) IsValid() bool {
	return t == SQLiteBackend || t == MemoryBackend
}

// Result holds the assembled dependencies. Cleanup releases them in
// reverse order of construction; calling it more than once is safe.
type Result struct {
	Repository storage.Repository
	Publisher  services.EventPublisher
	Cleanup    func() error
}

func once(f func() error) func() error {
	var o sync.Once
	var err error
	return func() error {
		o.Do(func() { err = f() })
		return err
	}
}

// Build creates the repository and, when an AMQP URL is configured, the
// event publisher. A broken broker connection is logged and skipped;
// the local store stays authoritative either way.
func Build(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid data backend: %s", cfg.DataBackend)
	}

	if t == MemoryBackend {
		return &Result{
			Repository: memory.NewStore(),
			Cleanup:    func() error { return nil },
		}, nil
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initializing sqlite repository: %w", err)
	}

	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to connect to AMQP, continuing without event publishing", "error", err)
		} else {
			logger.Info("Connected to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			publisher = amqpClient
		}
	}

	cleanup := func() error {
		var firstErr error
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				firstErr = fmt.Errorf("closing amqp client: %w", err)
			}
		}
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing repository: %w", err)
		}
		return firstErr
	}

	return &Result{Repository: repo, Publisher: publisher, Cleanup: once(cleanup)}, nil
}
