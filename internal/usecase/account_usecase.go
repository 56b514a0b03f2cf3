package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

// maxFileStem keeps ledger file names, credential suffix included, under
// the common 255-byte limit.
const maxFileStem = 200

// accountID is the identity of an account in the book.
type accountID struct {
	owner, bank string
}

// AccountUseCase keeps a book of open account ledgers, each backed by its
// own file under a data directory. Every successful mutation is persisted
// before returning. Access to the book is serialized.
type AccountUseCase struct {
	mu          sync.Mutex
	ledger      *LedgerUseCase
	store       LedgerStore
	credentials CredentialStore
	idGen       IDGenerator
	policy      domain.TransferPolicy
	now         func() time.Time
	dataDir     string
	accounts    map[accountID]*domain.Account
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(ledger *LedgerUseCase, store LedgerStore, credentials CredentialStore, idGen IDGenerator, policy domain.TransferPolicy, dataDir string) *AccountUseCase {
	return &AccountUseCase{
		ledger:      ledger,
		store:       store,
		credentials: credentials,
		idGen:       idGen,
		policy:      policy,
		now:         time.Now,
		dataDir:     dataDir,
		accounts:    make(map[accountID]*domain.Account),
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	OwnerID  string
	BankID   string
	Password string
}

// OpenAccount opens the ledger of owner/bank. An existing file is loaded
// only after the password matches the one registered when it was created;
// otherwise the password is registered and an empty ledger is written.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountRef(input.OwnerID, input.BankID); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	key := accountID{owner: input.OwnerID, bank: input.BankID}
	if acc, ok := uc.accounts[key]; ok {
		if err := acc.Authenticate(input.Password); err != nil {
			uc.ledger.denied(acc.Key(), "open")
			return nil, err
		}
		return acc, nil
	}

	acc := domain.NewAccount(input.OwnerID, input.BankID, input.Password, domain.WithTransferPolicy(uc.policy))
	path := uc.PathFor(input.OwnerID, input.BankID)

	if uc.store.Exists(path) {
		if err := uc.credentials.Verify(ctx, path, input.Password); err != nil {
			uc.ledger.denied(acc.Key(), "open")
			return nil, err
		}
		if err := uc.ledger.Load(ctx, acc, path, input.Password); err != nil {
			return nil, err
		}
	} else {
		if err := uc.credentials.Register(ctx, path, input.Password); err != nil {
			return nil, err
		}
		if err := uc.ledger.Save(ctx, acc, path, input.Password); err != nil {
			return nil, err
		}
	}

	uc.accounts[key] = acc
	return acc, nil
}

// AddTransactionInput represents input for appending a transaction.
type AddTransactionInput struct {
	Timestamp          *time.Time
	OwnerID            string
	BankID             string
	Password           string
	Kind               domain.Kind
	ID                 string
	Description        string
	Category           string
	OperationType      string
	SenderAccountID    string
	ReceiverAccountID  string
	DestinationOwnerID string
	DestinationBankID  string
	Amount             decimal.Decimal
}

// AddTransaction appends a transaction to an open account and persists it.
// When the file cannot be written the in-memory ledger is rolled back.
func (uc *AccountUseCase) AddTransaction(ctx context.Context, input AddTransactionInput) (domain.Transaction, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	acc, err := uc.authenticated(input.OwnerID, input.BankID, input.Password)
	if err != nil {
		return domain.Transaction{}, err
	}

	var destination *domain.Account
	if input.DestinationOwnerID != "" || input.DestinationBankID != "" {
		var ok bool
		destination, ok = uc.accounts[accountID{owner: input.DestinationOwnerID, bank: input.DestinationBankID}]
		if !ok {
			return domain.Transaction{}, fmt.Errorf("destination %w: %s/%s", domain.ErrAccountNotFound,
				input.DestinationOwnerID, input.DestinationBankID)
		}
	}

	id := input.ID
	if id == "" {
		id = uc.idGen.Generate()
	}

	at := uc.now()
	if input.Timestamp != nil {
		at = *input.Timestamp
	}

	operationType := input.OperationType
	if operationType == "" {
		operationType = string(input.Kind)
	}

	tx, err := domain.NewTransaction(input.Kind, domain.TransactionInput{
		Timestamp:         at,
		ID:                id,
		Description:       input.Description,
		Category:          input.Category,
		OperationType:     operationType,
		SenderAccountID:   input.SenderAccountID,
		ReceiverAccountID: input.ReceiverAccountID,
		Amount:            input.Amount,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	previous := acc.Transactions()
	if err := uc.ledger.AddTransaction(ctx, acc, tx, destination); err != nil {
		return domain.Transaction{}, err
	}

	if err := uc.ledger.Save(ctx, acc, uc.PathFor(acc.OwnerID(), acc.BankID()), input.Password); err != nil {
		acc.Restore(previous)
		return domain.Transaction{}, err
	}

	return tx, nil
}

// ListTransactionsInput represents input for listing transactions.
// Kind and Counterparty are optional filters.
type ListTransactionsInput struct {
	OwnerID      string
	BankID       string
	Password     string
	Kind         domain.Kind
	Counterparty string
}

// ListTransactions returns matching transactions ordered by timestamp.
func (uc *AccountUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]domain.Transaction, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	acc, err := uc.authenticated(input.OwnerID, input.BankID, input.Password)
	if err != nil {
		return nil, err
	}

	var txs []domain.Transaction
	switch {
	case input.Kind != "":
		txs = acc.FilterByType(input.Kind)
	default:
		txs = acc.Transactions()
	}

	if input.Counterparty != "" {
		filtered := txs[:0]
		for _, tx := range txs {
			if tx.InvolvesAccount(input.Counterparty) {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	return domain.SortByTimestamp(txs), nil
}

// GetTransaction returns a single transaction by id.
func (uc *AccountUseCase) GetTransaction(ctx context.Context, ownerID, bankID, password, id string) (domain.Transaction, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	acc, err := uc.authenticated(ownerID, bankID, password)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx, ok := acc.FindByID(id)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
	}
	return tx, nil
}

// GetSummary returns deposits, withdrawals and balance of an open account.
func (uc *AccountUseCase) GetSummary(ctx context.Context, ownerID, bankID, password string) (domain.Summary, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	acc, err := uc.authenticated(ownerID, bankID, password)
	if err != nil {
		return domain.Summary{}, err
	}
	return acc.ComputeSummary(), nil
}

// PathFor returns the ledger file of owner/bank inside the data directory.
func (uc *AccountUseCase) PathFor(ownerID, bankID string) string {
	return LedgerPath(uc.dataDir, ownerID, bankID)
}

// LedgerPath names the ledger file of owner/bank inside dataDir as
// <owner>__<bank>.csv. Bytes outside [A-Za-z0-9-] are written as _XX, so an
// escaped id never contains "__" and distinct accounts never share a file.
// Stems too long for the filesystem keep a prefix plus a SHA-256 of the full stem.
func LedgerPath(dataDir, ownerID, bankID string) string {
	stem := escapeFileName(ownerID) + "__" + escapeFileName(bankID)
	if len(stem) > maxFileStem {
		sum := sha256.Sum256([]byte(stem))
		stem = stem[:maxFileStem-len(sum)*2-1] + "-" + hex.EncodeToString(sum[:])
	}
	return filepath.Join(dataDir, stem+LedgerFileExt)
}

func escapeFileName(id string) string {
	var b strings.Builder
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02X", c)
		}
	}
	return b.String()
}

func (uc *AccountUseCase) authenticated(ownerID, bankID, password string) (*domain.Account, error) {
	acc, ok := uc.accounts[accountID{owner: ownerID, bank: bankID}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrAccountNotFound, ownerID, bankID)
	}
	if err := acc.Authenticate(password); err != nil {
		return nil, err
	}
	return acc, nil
}
