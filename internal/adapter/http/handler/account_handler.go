package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/adapter/http/dto"
	"github.com/crickex/ledger/internal/domain"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	Ensure(ctx context.Context, userID string) (*domain.Account, error)
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)
	Deposit(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Account, error)
	Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Account, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
}

// AccountHandler handles account HTTP requests.
type AccountHandler struct {
	ledgerUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledgerUC AccountService) *AccountHandler {
	return &AccountHandler{ledgerUC: ledgerUC}
}

// Get returns the user's account, provisioning it on first reference.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	account, err := h.ledgerUC.Ensure(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Deposit tops up the user's balance.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.ledgerUC.Deposit(r.Context(), userID, req.Amount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Withdraw removes available funds from the user's balance.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.ledgerUC.Withdraw(r.Context(), userID, req.Amount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to withdraw", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Transactions lists the user's transaction history, newest first.
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	txns, err := h.ledgerUC.ListTransactions(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}
