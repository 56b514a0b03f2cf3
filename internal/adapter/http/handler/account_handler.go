package handler

import (
	"context"
	"net/http"

	"github.com/iho/txledger/internal/adapter/http/dto"
	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	GetSummary(ctx context.Context, ownerID, bankID, password string) (domain.Summary, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Open opens the account ledger, creating it on first use.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing account reference", "")
		return
	}

	account, err := h.accountUC.OpenAccount(r.Context(), usecase.OpenAccountInput{
		OwnerID:  ref.ownerID,
		BankID:   ref.bankID,
		Password: ref.password,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open account", err.Error())
		return
	}

	summary, err := h.accountUC.GetSummary(r.Context(), ref.ownerID, ref.bankID, ref.password)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountResponse{
		OwnerID: account.OwnerID(),
		BankID:  account.BankID(),
		Summary: dto.SummaryFromDomain(summary),
	})
}

// Summary returns deposits, withdrawals and balance.
func (h *AccountHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing account reference", "")
		return
	}

	summary, err := h.accountUC.GetSummary(r.Context(), ref.ownerID, ref.bankID, ref.password)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}
