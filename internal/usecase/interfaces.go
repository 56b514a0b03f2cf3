package usecase

import (
	"context"
	"time"

	"github.com/iho/txledger/internal/domain"
)

// LedgerStore persists ledgers as delimited text files.
type LedgerStore interface {
	// Save writes the account header, its date-sorted transactions and a summary to path.
	Save(ctx context.Context, path string, account *domain.Account) error
	// Load decodes every transaction in path. The file header must name ownerID and bankID.
	Load(ctx context.Context, path, ownerID, bankID string) ([]domain.Transaction, error)
	// Exists reports whether a ledger file is present at path.
	Exists(path string) bool
}

// CredentialStore keeps account passwords across restarts, keyed by ledger file.
type CredentialStore interface {
	// Verify returns domain.ErrAccessDenied unless password matches the one
	// registered for ledgerPath. A file with nothing registered is denied too.
	Verify(ctx context.Context, ledgerPath, password string) error
	// Register records password for ledgerPath, replacing any previous one.
	Register(ctx context.Context, ledgerPath, password string) error
}

// Printer renders transaction listings.
type Printer interface {
	// PrintTransactions renders txs, or an explicit "no transactions" line when empty.
	PrintTransactions(txs []domain.Transaction) error
	// PrintStatement renders txs followed by the summary block.
	PrintStatement(txs []domain.Transaction, summary domain.Summary) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so the request can be retried.
	Release(ctx context.Context, key string) error
}
