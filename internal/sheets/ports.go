// Package sheets defines the ports for the external spreadsheet mirror.
package sheets

import (
	"context"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter mirrors one transaction to the external sheet.
	// Writing the same id again replaces the existing row; a transaction
	// never occupies more than one row.
	TransactionWriter interface {
		UpsertTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionDeleter removes a mirrored transaction by its id.
	TransactionDeleter interface {
		DeleteTransaction(ctx context.Context, id string) error
	}
)
