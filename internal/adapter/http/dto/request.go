package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// CreateTransactionRequest represents a request to append a transaction.
// Destination fields name the counterpart account of a transfer.
type CreateTransactionRequest struct {
	ID                 string     `json:"id,omitempty"`
	Kind               string     `json:"kind"`
	Timestamp          *time.Time `json:"timestamp,omitempty"`
	Amount             string     `json:"amount"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	OperationType      string     `json:"operation_type,omitempty"`
	Sender             string     `json:"sender"`
	Receiver           string     `json:"receiver"`
	DestinationOwnerID string     `json:"destination_owner_id,omitempty"`
	DestinationBankID  string     `json:"destination_bank_id,omitempty"`
}

// ToUseCaseInput converts to use case input for the account owner/bank.
func (r *CreateTransactionRequest) ToUseCaseInput(ownerID, bankID, password string) (usecase.AddTransactionInput, error) {
	kind, err := domain.ParseKind(r.Kind)
	if err != nil {
		return usecase.AddTransactionInput{}, err
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return usecase.AddTransactionInput{}, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, r.Amount)
	}

	return usecase.AddTransactionInput{
		Timestamp:          r.Timestamp,
		OwnerID:            ownerID,
		BankID:             bankID,
		Password:           password,
		Kind:               kind,
		ID:                 r.ID,
		Description:        r.Description,
		Category:           r.Category,
		OperationType:      r.OperationType,
		SenderAccountID:    r.Sender,
		ReceiverAccountID:  r.Receiver,
		DestinationOwnerID: r.DestinationOwnerID,
		DestinationBankID:  r.DestinationBankID,
		Amount:             amount,
	}, nil
}
