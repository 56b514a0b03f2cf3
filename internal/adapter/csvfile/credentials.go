package csvfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/txledger/internal/domain"
)

// CredentialExt is appended to a ledger path to name its password file.
const CredentialExt = ".auth"

// CredentialFile keeps a bcrypt hash of each ledger's password in a file
// next to the ledger, so a password outlives the process that set it.
type CredentialFile struct {
	cost    int
	retrier *Retrier
	logger  zerolog.Logger
}

// NewCredentialFile creates a CredentialFile hashing with the given bcrypt
// cost. Costs below bcrypt.MinCost fall back to bcrypt.DefaultCost.
func NewCredentialFile(cost int, logger zerolog.Logger) *CredentialFile {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialFile{
		cost:    cost,
		retrier: NewRetrier(logger),
		logger:  logger,
	}
}

// Register stores the hash of password for ledgerPath.
func (c *CredentialFile) Register(ctx context.Context, ledgerPath, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	path := ledgerPath + CredentialExt
	err = c.retrier.Retry(ctx, func() error {
		return writeFileAtomic(path, append(hash, '\n'))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIO, err)
	}

	c.logger.Debug().Str("path", path).Msg("credentials registered")
	return nil
}

// Verify checks password against the hash registered for ledgerPath.
func (c *CredentialFile) Verify(ctx context.Context, ledgerPath, password string) error {
	path := ledgerPath + CredentialExt

	var data []byte
	err := c.retrier.Retry(ctx, func() error {
		var err error
		data, err = os.ReadFile(path)
		return err
	})
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: no password registered for %s", domain.ErrAccessDenied, ledgerPath)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIO, err)
	}

	if err := bcrypt.CompareHashAndPassword(bytes.TrimSpace(data), []byte(password)); err != nil {
		return domain.ErrAccessDenied
	}
	return nil
}
