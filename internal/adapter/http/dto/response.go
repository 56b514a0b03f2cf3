package dto

import (
	"time"

	"github.com/iho/txledger/internal/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Timestamp     time.Time `json:"timestamp"`
	Amount        string    `json:"amount"`
	SignedAmount  string    `json:"signed_amount"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	OperationType string    `json:"operation_type"`
	Sender        string    `json:"sender"`
	Receiver      string    `json:"receiver"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID(),
		Kind:          string(t.Kind()),
		Timestamp:     t.Timestamp(),
		Amount:        t.Amount().StringFixed(2),
		SignedAmount:  t.SignedValue().StringFixed(2),
		Description:   t.Description(),
		Category:      t.Category(),
		OperationType: t.OperationType(),
		Sender:        t.SenderAccountID(),
		Receiver:      t.ReceiverAccountID(),
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse represents a list of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int                    `json:"total"`
}

// SummaryResponse represents account totals.
type SummaryResponse struct {
	TotalDeposits    string `json:"total_deposits"`
	TotalWithdrawals string `json:"total_withdrawals"`
	Balance          string `json:"balance"`
}

// SummaryFromDomain converts a domain summary to response.
func SummaryFromDomain(s domain.Summary) SummaryResponse {
	return SummaryResponse{
		TotalDeposits:    s.TotalDeposits.StringFixed(2),
		TotalWithdrawals: s.TotalWithdrawals.StringFixed(2),
		Balance:          s.Balance.StringFixed(2),
	}
}

// AccountResponse represents an opened account.
type AccountResponse struct {
	OwnerID string          `json:"owner_id"`
	BankID  string          `json:"bank_id"`
	Summary SummaryResponse `json:"summary"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
