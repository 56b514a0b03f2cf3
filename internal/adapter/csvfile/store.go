package csvfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/iho/txledger/internal/domain"
)

// FileStore persists account ledgers as delimited text files.
type FileStore struct {
	dialect Dialect
	retrier *Retrier
	logger  zerolog.Logger
}

// NewFileStore creates a new FileStore writing and reading dialect d.
func NewFileStore(d Dialect, logger zerolog.Logger) *FileStore {
	return &FileStore{
		dialect: d,
		retrier: NewRetrier(logger),
		logger:  logger,
	}
}

// Dialect returns the dialect used for both save and load.
func (s *FileStore) Dialect() Dialect {
	return s.dialect
}

// Save writes account to path. The file is written next to path and renamed
// into place, so readers never observe a partial ledger.
func (s *FileStore) Save(ctx context.Context, path string, account *domain.Account) error {
	var buf bytes.Buffer
	if err := Encode(&buf, account, s.dialect); err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	err := s.retrier.Retry(ctx, func() error {
		return writeFileAtomic(path, buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIO, err)
	}

	s.logger.Debug().Str("path", path).Int("bytes", buf.Len()).Msg("ledger file written")
	return nil
}

// Load decodes the ledger at path and checks that it belongs to ownerID/bankID.
func (s *FileStore) Load(ctx context.Context, path, ownerID, bankID string) ([]domain.Transaction, error) {
	var data []byte
	err := s.retrier.Retry(ctx, func() error {
		var err error
		data, err = os.ReadFile(path)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIO, err)
	}

	txs, err := Decode(bytes.NewReader(data), ownerID, bankID, s.dialect)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return txs, nil
}

// Exists reports whether a ledger file is present at path.
func (s *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		return errors.Join(err, f.Close())
	}
	if err = f.Sync(); err != nil {
		return errors.Join(err, f.Close())
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
