package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the direction of a transaction relative to the account that holds it.
type Kind string

const (
	KindIncome  Kind = "Income"
	KindExpense Kind = "Expense"
)

// TransferMarker flags a transaction as one side of a transfer pair when used
// as its category or operation type.
const TransferMarker = "Transfer"

// ParseKind converts a kind token into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
}

// TransactionInput carries the caller-supplied fields of a transaction.
type TransactionInput struct {
	Timestamp         time.Time
	ID                string
	Description       string
	Category          string
	OperationType     string
	SenderAccountID   string
	ReceiverAccountID string
	Amount            decimal.Decimal
}

// Transaction is an immutable record of one monetary event.
type Transaction struct {
	timestamp         time.Time
	id                string
	description       string
	category          string
	operationType     string
	senderAccountID   string
	receiverAccountID string
	kind              Kind
	amount            decimal.Decimal
}

// NewIncome creates an income transaction.
func NewIncome(in TransactionInput) Transaction {
	return newTransaction(KindIncome, in)
}

// NewExpense creates an expense transaction.
func NewExpense(in TransactionInput) Transaction {
	return newTransaction(KindExpense, in)
}

// NewTransaction creates a transaction of the given kind.
func NewTransaction(kind Kind, in TransactionInput) (Transaction, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Transaction{}, err
	}
	return newTransaction(kind, in), nil
}

func newTransaction(kind Kind, in TransactionInput) Transaction {
	return Transaction{
		timestamp:         in.Timestamp.UTC().Truncate(time.Second),
		id:                in.ID,
		description:       in.Description,
		category:          in.Category,
		operationType:     in.OperationType,
		senderAccountID:   in.SenderAccountID,
		receiverAccountID: in.ReceiverAccountID,
		kind:              kind,
		amount:            in.Amount,
	}
}

func (t Transaction) ID() string                { return t.id }
func (t Transaction) Timestamp() time.Time      { return t.timestamp }
func (t Transaction) Amount() decimal.Decimal   { return t.amount }
func (t Transaction) Description() string       { return t.description }
func (t Transaction) Category() string          { return t.category }
func (t Transaction) OperationType() string     { return t.operationType }
func (t Transaction) SenderAccountID() string   { return t.senderAccountID }
func (t Transaction) ReceiverAccountID() string { return t.receiverAccountID }
func (t Transaction) Kind() Kind                { return t.kind }

// SignedValue returns the contribution of the transaction to the balance.
func (t Transaction) SignedValue() decimal.Decimal {
	if t.kind == KindExpense {
		return t.amount.Neg()
	}
	return t.amount
}

// IsTransfer reports whether the transaction is one side of a transfer pair.
func (t Transaction) IsTransfer() bool {
	return t.category == TransferMarker || t.operationType == TransferMarker
}

// InvolvesAccount reports whether accountID is the sender or the receiver.
func (t Transaction) InvolvesAccount(accountID string) bool {
	return t.senderAccountID == accountID || t.receiverAccountID == accountID
}
