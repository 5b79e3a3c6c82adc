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

// TradeService defines the behavior needed by TradeHandler.
type TradeService interface {
	Buy(ctx context.Context, userID, marketKey string, dir domain.Direction, quantity int64) (*usecase.TradeResult, error)
	Sell(ctx context.Context, userID, positionID string, quantity int64) (*usecase.TradeResult, error)
	Portfolio(ctx context.Context, userID string) ([]*usecase.PortfolioEntry, error)
}

// TradeHandler handles trading HTTP requests.
type TradeHandler struct {
	tradingUC TradeService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradingUC TradeService) *TradeHandler {
	return &TradeHandler{tradingUC: tradingUC}
}

// Buy executes a buy order at the current market price.
func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req dto.BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.UserID == "" || req.MarketKey == "" {
		writeError(w, http.StatusBadRequest, "user_id and market_key are required", "")
		return
	}

	result, err := h.tradingUC.Buy(r.Context(), req.UserID, req.MarketKey, dto.ParseDirection(req.Direction), req.Quantity)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to execute buy", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TradeFromResult(result))
}

// Sell closes all or part of a position at the current market price.
func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req dto.SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.UserID == "" || req.PositionID == "" {
		writeError(w, http.StatusBadRequest, "user_id and position_id are required", "")
		return
	}

	result, err := h.tradingUC.Sell(r.Context(), req.UserID, req.PositionID, req.Quantity)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to execute sell", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TradeFromResult(result))
}

// Portfolio lists the user's open positions marked at current prices.
func (h *TradeHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	entries, err := h.tradingUC.Portfolio(r.Context(), userID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load portfolio", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PortfolioFromEntries(entries))
}
