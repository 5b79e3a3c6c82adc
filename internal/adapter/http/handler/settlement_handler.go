package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crickex/ledger/internal/adapter/http/dto"
	"github.com/crickex/ledger/internal/domain"
	"github.com/crickex/ledger/internal/usecase"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	Settle(ctx context.Context, marketKey string, winner domain.Direction, adminID string) (*usecase.SettlementResult, error)
	GetSettlement(ctx context.Context, marketKey string) (*domain.Settlement, error)
}

// SettlementHandler handles settlement HTTP requests.
type SettlementHandler struct {
	settlementUC SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC}
}

// Settle resolves a market with the given winner.
func (h *SettlementHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.MarketKey == "" {
		writeError(w, http.StatusBadRequest, "market_key is required", "")
		return
	}

	result, err := h.settlementUC.Settle(r.Context(), req.MarketKey, dto.ParseDirection(req.Winner), req.AdminID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to settle market", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromResult(result))
}

// Get returns the settlement record for a market.
func (h *SettlementHandler) Get(w http.ResponseWriter, r *http.Request) {
	marketKey := chi.URLParam(r, "marketKey")
	if marketKey == "" {
		writeError(w, http.StatusBadRequest, "missing market key", "")
		return
	}

	settlement, err := h.settlementUC.GetSettlement(r.Context(), marketKey)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementRecordFromDomain(settlement))
}
