package domain

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Account is the transaction ledger of one owner at one bank.
// It is not safe for concurrent use.
type Account struct {
	ownerID      string
	bankID       string
	password     string
	policy       TransferPolicy
	transactions []Transaction
}

// AccountOption configures an Account.
type AccountOption func(*Account)

// WithTransferPolicy replaces the default DifferentBank policy.
func WithTransferPolicy(p TransferPolicy) AccountOption {
	return func(a *Account) {
		if p != nil {
			a.policy = p
		}
	}
}

// NewAccount creates an empty ledger.
func NewAccount(ownerID, bankID, password string, opts ...AccountOption) *Account {
	a := &Account{
		ownerID:  ownerID,
		bankID:   bankID,
		password: password,
		policy:   DifferentBank,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summary aggregates the transactions of a ledger.
type Summary struct {
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	Balance          decimal.Decimal
}

func (a *Account) OwnerID() string { return a.ownerID }
func (a *Account) BankID() string  { return a.bankID }

// Key renders the account as owner/bank for logs and messages. Ids may
// contain '/', so it is not a unique identity.
func (a *Account) Key() string {
	return a.ownerID + "/" + a.bankID
}

// VerifyPassword reports whether pwd matches the account password.
func (a *Account) VerifyPassword(pwd string) bool {
	return pwd == a.password
}

// Authenticate returns ErrAccessDenied unless pwd matches.
func (a *Account) Authenticate(pwd string) error {
	if !a.VerifyPassword(pwd) {
		return ErrAccessDenied
	}
	return nil
}

// AddTransaction validates t and appends it to the ledger.
//
// Checks run in order: transfer-pair rule (only for transfers), sufficient
// funds (only for expenses), non-negative amount, unique id. The destination
// is only read.
func (a *Account) AddTransaction(t Transaction, destination *Account) error {
	if t.IsTransfer() {
		if err := a.validateTransfer(destination); err != nil {
			return err
		}
	}

	if t.Kind() == KindExpense && a.Balance().Add(t.SignedValue()).IsNegative() {
		return fmt.Errorf("%w: balance %s, expense %s", ErrInsufficientFunds,
			a.Balance().StringFixed(2), t.Amount().StringFixed(2))
	}

	if t.Amount().IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, t.Amount())
	}

	if _, exists := a.FindByID(t.ID()); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID())
	}

	a.transactions = append(a.transactions, t)
	return nil
}

// Restore replaces every transaction with txs without applying any rule.
func (a *Account) Restore(txs []Transaction) {
	a.transactions = slices.Clone(txs)
}

// Balance is the sum of all signed values.
func (a *Account) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, t := range a.transactions {
		total = total.Add(t.SignedValue())
	}
	return total
}

// ComputeSummary returns deposits, withdrawals and balance.
func (a *Account) ComputeSummary() Summary {
	s := Summary{
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		Balance:          a.Balance(),
	}
	for _, t := range a.SortedTransactions() {
		v := t.SignedValue()
		if v.IsNegative() {
			s.TotalWithdrawals = s.TotalWithdrawals.Add(v.Neg())
		} else {
			s.TotalDeposits = s.TotalDeposits.Add(v)
		}
	}
	return s
}

// Len returns the number of transactions held.
func (a *Account) Len() int {
	return len(a.transactions)
}

// Transactions returns a copy of the ledger in insertion order.
func (a *Account) Transactions() []Transaction {
	return slices.Clone(a.transactions)
}

// FindByID returns the first transaction with the given id.
func (a *Account) FindByID(id string) (Transaction, bool) {
	for _, t := range a.transactions {
		if t.ID() == id {
			return t, true
		}
	}
	return Transaction{}, false
}

// FilterByType returns transactions of the given kind in insertion order.
func (a *Account) FilterByType(kind Kind) []Transaction {
	return a.filter(func(t Transaction) bool { return t.Kind() == kind })
}

// FilterByCounterparty returns transactions sent from or received by accountID.
func (a *Account) FilterByCounterparty(accountID string) []Transaction {
	return a.filter(func(t Transaction) bool { return t.InvolvesAccount(accountID) })
}

// SortedTransactions returns all transactions ordered by timestamp.
// Equal timestamps keep insertion order.
func (a *Account) SortedTransactions() []Transaction {
	return SortByTimestamp(a.Transactions())
}

func (a *Account) filter(keep func(Transaction) bool) []Transaction {
	var out []Transaction
	for _, t := range a.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortByTimestamp stably sorts txs by timestamp in place and returns it.
func SortByTimestamp(txs []Transaction) []Transaction {
	slices.SortStableFunc(txs, func(x, y Transaction) int {
		return x.Timestamp().Compare(y.Timestamp())
	})
	return txs
}
