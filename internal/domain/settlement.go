package domain

import "time"

// Settlement is the one-time record resolving a market. Its existence is the
// single source of truth for "is this market settled"; the store enforces
// uniqueness on MarketKey so two racing settlement attempts cannot both
// succeed.
type Settlement struct {
	MarketKey string
	Winner    Direction
	AdminID   string
	SettledAt time.Time
}
