package usecase

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/crickex/ledger/internal/adapter/repository/memory"
)

// seqIDGenerator hands out deterministic ids for assertions.
type seqIDGenerator struct {
	n int
}

func (g *seqIDGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fixture struct {
	accounts     *memory.AccountStore
	positions    *memory.PositionStore
	transactions *memory.TransactionStore
	settlements  *memory.SettlementStore
	prices       *memory.PriceSource
	locks        *UserLocks
	idGen        *seqIDGenerator

	ledger     *LedgerUseCase
	trading    *TradingUseCase
	settlement *SettlementUseCase
}

// newFixture wires the use cases over in-memory stores with a welcome credit
// of 100 and no metrics.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		accounts:     memory.NewAccountStore(),
		positions:    memory.NewPositionStore(),
		transactions: memory.NewTransactionStore(),
		settlements:  memory.NewSettlementStore(),
		prices:       memory.NewPriceSource(),
		locks:        NewUserLocks(),
		idGen:        &seqIDGenerator{},
	}

	log := zerolog.Nop()
	f.ledger = NewLedgerUseCase(f.accounts, f.transactions, f.locks, nil, f.idGen, nil, log, decimal.NewFromInt(100))
	f.trading = NewTradingUseCase(f.ledger, f.positions, f.prices, f.locks, nil, f.idGen, nil, log)
	f.settlement = NewSettlementUseCase(f.ledger, f.positions, f.settlements, f.locks, nil, nil, log)

	return f
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}
