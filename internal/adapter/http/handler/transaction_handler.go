package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/txledger/internal/adapter/http/dto"
	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	AddTransaction(ctx context.Context, input usecase.AddTransactionInput) (domain.Transaction, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, ownerID, bankID, password, id string) (domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Create appends a transaction to the account.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing account reference", "")
		return
	}

	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(ref.ownerID, ref.bankID, ref.password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction", err.Error())
		return
	}

	tx, err := h.transactionUC.AddTransaction(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "transaction rejected", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// List returns transactions in date order, optionally filtered by type and
// counterparty account.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing account reference", "")
		return
	}

	input := usecase.ListTransactionsInput{
		OwnerID:      ref.ownerID,
		BankID:       ref.bankID,
		Password:     ref.password,
		Counterparty: r.URL.Query().Get("counterparty"),
	}
	if kind := r.URL.Query().Get("type"); kind != "" {
		parsed, err := domain.ParseKind(kind)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid type filter", err.Error())
			return
		}
		input.Kind = parsed
	}

	txs, err := h.transactionUC.ListTransactions(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Total:        len(txs),
	})
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing account reference", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	tx, err := h.transactionUC.GetTransaction(r.Context(), ref.ownerID, ref.bankID, ref.password, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}
