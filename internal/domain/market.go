package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceSnapshot is the transient market quote supplied by the external odds
// source. Prices are expressed in cents (1..99); the upstream normalizer
// guarantees PriceA + PriceB == 100, which the ledger does not re-validate.
type PriceSnapshot struct {
	Version   int    `json:"version"`
	MarketKey string `json:"market_key"`
	TeamA     string `json:"team_a"`
	TeamB     string `json:"team_b"`
	PriceA    int64  `json:"price_a"`
	PriceB    int64  `json:"price_b"`
}

// PriceSnapshotVersion is the payload version this service understands.
const PriceSnapshotVersion = 1

// Validate checks the snapshot against the versioned ingester contract.
// The payload shape comes from an external scraper and is never trusted
// past this boundary.
func (s *PriceSnapshot) Validate() error {
	if s.Version != PriceSnapshotVersion {
		return fmt.Errorf("%w: unsupported snapshot version %d", ErrMarketUnavailable, s.Version)
	}
	if s.MarketKey == "" {
		return fmt.Errorf("%w: snapshot missing market key", ErrMarketUnavailable)
	}
	if s.PriceA < 1 || s.PriceA > 99 || s.PriceB < 1 || s.PriceB > 99 {
		return fmt.Errorf("%w: price out of range (a=%d, b=%d)", ErrMarketUnavailable, s.PriceA, s.PriceB)
	}
	return nil
}

// Price returns the per-share price for a direction as a fraction of one
// full unit, e.g. 60 cents -> 0.60.
func (s *PriceSnapshot) Price(dir Direction) decimal.Decimal {
	cents := s.PriceA
	if dir == DirectionB {
		cents = s.PriceB
	}
	return decimal.New(cents, -2)
}
