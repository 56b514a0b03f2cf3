package usecase

import "time"

const (
	// LedgerFileExt is the extension of ledger files kept by the account book.
	LedgerFileExt = ".csv"

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
