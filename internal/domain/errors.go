package domain

import "errors"

var (
	// Order errors
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMarketUnavailable = errors.New("market price unavailable")

	// Position errors
	ErrPositionNotFound = errors.New("position not found")
	ErrPositionNotOpen  = errors.New("position is not open")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Settlement errors
	ErrInvalidWinner      = errors.New("winner must be A or B")
	ErrAlreadySettled     = errors.New("market already settled")
	ErrSettlementNotFound = errors.New("settlement not found")

	// Store errors
	ErrStoreUnavailable = errors.New("durable store unavailable")
)
