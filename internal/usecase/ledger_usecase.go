package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/infrastructure/metrics"
)

// LedgerUseCase wraps a single account ledger with authentication,
// rendering and persistence.
type LedgerUseCase struct {
	store   LedgerStore
	printer Printer
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(store LedgerStore, printer Printer, m *metrics.Metrics, logger zerolog.Logger) *LedgerUseCase {
	if m == nil {
		m = metrics.Nop()
	}
	return &LedgerUseCase{
		store:   store,
		printer: printer,
		metrics: m,
		logger:  logger,
	}
}

// AddTransaction validates and appends tx to account. destination is only
// consulted for transfers and is never modified.
func (uc *LedgerUseCase) AddTransaction(ctx context.Context, account *domain.Account, tx domain.Transaction, destination *domain.Account) error {
	if err := account.AddTransaction(tx, destination); err != nil {
		uc.metrics.TransactionsRejected.WithLabelValues(rejectReason(err)).Inc()
		uc.logger.Warn().
			Err(err).
			Str("account", account.Key()).
			Str("transaction_id", tx.ID()).
			Str("kind", string(tx.Kind())).
			Msg("transaction rejected")
		return err
	}

	uc.metrics.TransactionsAppended.WithLabelValues(string(tx.Kind())).Inc()
	uc.metrics.AccountBalance.WithLabelValues(account.OwnerID(), account.BankID()).Set(account.Balance().InexactFloat64())

	uc.logger.Debug().
		Str("account", account.Key()).
		Str("transaction_id", tx.ID()).
		Str("amount", tx.Amount().StringFixed(2)).
		Msg("transaction appended")

	return nil
}

// TransferPairInput describes both sides of a transfer between two ledgers.
type TransferPairInput struct {
	Timestamp   time.Time
	OutgoingID  string
	IncomingID  string
	Description string
	Amount      decimal.Decimal
}

// PostTransferPair records an expense on from and an income on to, each
// validated independently against the other account. The two entries are not
// linked: when the incoming side fails, the outgoing entry stays recorded and
// the returned error says so.
func (uc *LedgerUseCase) PostTransferPair(ctx context.Context, from, to *domain.Account, input TransferPairInput) error {
	base := domain.TransactionInput{
		Timestamp:         input.Timestamp,
		Description:       input.Description,
		Category:          domain.TransferMarker,
		SenderAccountID:   from.BankID(),
		ReceiverAccountID: to.BankID(),
		Amount:            input.Amount,
	}

	out := base
	out.ID = input.OutgoingID
	out.OperationType = string(domain.KindExpense)
	if err := uc.AddTransaction(ctx, from, domain.NewExpense(out), to); err != nil {
		return fmt.Errorf("outgoing side: %w", err)
	}

	in := base
	in.ID = input.IncomingID
	in.OperationType = string(domain.KindIncome)
	if err := uc.AddTransaction(ctx, to, domain.NewIncome(in), from); err != nil {
		return fmt.Errorf("incoming side (outgoing %s already recorded): %w", input.OutgoingID, err)
	}

	return nil
}

// PrintAll renders every transaction in date order followed by the summary.
func (uc *LedgerUseCase) PrintAll(ctx context.Context, account *domain.Account, password string) error {
	if err := uc.authenticate(account, password, "print_all"); err != nil {
		return err
	}
	return uc.printer.PrintStatement(account.SortedTransactions(), account.ComputeSummary())
}

// PrintByID renders the transaction with the given id.
func (uc *LedgerUseCase) PrintByID(ctx context.Context, account *domain.Account, password, id string) error {
	if err := uc.authenticate(account, password, "print_by_id"); err != nil {
		return err
	}
	var matches []domain.Transaction
	if tx, ok := account.FindByID(id); ok {
		matches = append(matches, tx)
	}
	return uc.printer.PrintTransactions(matches)
}

// PrintByType renders transactions of one kind in date order.
func (uc *LedgerUseCase) PrintByType(ctx context.Context, account *domain.Account, password string, kind domain.Kind) error {
	if err := uc.authenticate(account, password, "print_by_type"); err != nil {
		return err
	}
	return uc.printer.PrintTransactions(domain.SortByTimestamp(account.FilterByType(kind)))
}

// PrintByCounterparty renders transactions sent from or received by accountID in date order.
func (uc *LedgerUseCase) PrintByCounterparty(ctx context.Context, account *domain.Account, password, accountID string) error {
	if err := uc.authenticate(account, password, "print_by_account"); err != nil {
		return err
	}
	return uc.printer.PrintTransactions(domain.SortByTimestamp(account.FilterByCounterparty(accountID)))
}

// Save writes account to path.
func (uc *LedgerUseCase) Save(ctx context.Context, account *domain.Account, path, password string) error {
	if err := uc.authenticate(account, password, "save"); err != nil {
		return err
	}

	start := time.Now()
	defer func() { uc.metrics.SaveDuration.Observe(time.Since(start).Seconds()) }()

	if err := uc.store.Save(ctx, path, account); err != nil {
		uc.metrics.IOErrors.WithLabelValues("save").Inc()
		uc.logger.Error().Err(err).Str("account", account.Key()).Str("path", path).Msg("failed to save ledger")
		return err
	}

	uc.logger.Info().
		Str("account", account.Key()).
		Str("path", path).
		Int("transactions", account.Len()).
		Msg("ledger saved")

	return nil
}

// Load replaces the transactions of account with the contents of path.
// The file is decoded completely before anything is replaced, so a bad file
// leaves the ledger untouched. Validation rules are not re-applied.
func (uc *LedgerUseCase) Load(ctx context.Context, account *domain.Account, path, password string) error {
	if err := uc.authenticate(account, password, "load"); err != nil {
		return err
	}

	start := time.Now()
	defer func() { uc.metrics.LoadDuration.Observe(time.Since(start).Seconds()) }()

	txs, err := uc.store.Load(ctx, path, account.OwnerID(), account.BankID())
	if err != nil {
		uc.metrics.IOErrors.WithLabelValues("load").Inc()
		uc.logger.Error().Err(err).Str("account", account.Key()).Str("path", path).Msg("failed to load ledger")
		return err
	}

	account.Restore(txs)
	uc.metrics.AccountBalance.WithLabelValues(account.OwnerID(), account.BankID()).Set(account.Balance().InexactFloat64())

	uc.logger.Info().
		Str("account", account.Key()).
		Str("path", path).
		Int("transactions", len(txs)).
		Msg("ledger loaded")

	return nil
}

func (uc *LedgerUseCase) authenticate(account *domain.Account, password, operation string) error {
	if err := account.Authenticate(password); err != nil {
		uc.denied(account.Key(), operation)
		return err
	}
	return nil
}

func (uc *LedgerUseCase) denied(account, operation string) {
	uc.metrics.AuthFailures.WithLabelValues(operation).Inc()
	uc.logger.Warn().Str("account", account).Str("operation", operation).Msg("access denied")
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return "missing_destination"
	case errors.Is(err, domain.ErrRuleViolation):
		return "transfer_rule"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrNegativeAmount):
		return "negative_amount"
	case errors.Is(err, domain.ErrDuplicateID):
		return "duplicate_id"
	default:
		return "other"
	}
}
