package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestPosition_AverageIn(t *testing.T) {
	tests := []struct {
		name         string
		startQty     int64
		startPrice   string
		buyQty       int64
		buyPrice     string
		wantQty      int64
		wantAvgPrice string
	}{
		{
			name:     "equal quantities average midway",
			startQty: 10, startPrice: "0.60",
			buyQty: 10, buyPrice: "0.40",
			wantQty: 20, wantAvgPrice: "0.50",
		},
		{
			name:     "weighted toward larger lot",
			startQty: 30, startPrice: "0.50",
			buyQty: 10, buyPrice: "0.90",
			wantQty: 40, wantAvgPrice: "0.60",
		},
		{
			name:     "same price unchanged",
			startQty: 5, startPrice: "0.25",
			buyQty: 15, buyPrice: "0.25",
			wantQty: 20, wantAvgPrice: "0.25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Position{
				Quantity: tt.startQty,
				AvgPrice: mustDecimal(t, tt.startPrice),
				Status:   PositionStatusOpen,
			}

			p.AverageIn(tt.buyQty, mustDecimal(t, tt.buyPrice))

			if p.Quantity != tt.wantQty {
				t.Errorf("expected quantity %d, got %d", tt.wantQty, p.Quantity)
			}
			if !p.AvgPrice.Equal(mustDecimal(t, tt.wantAvgPrice)) {
				t.Errorf("expected avg price %s, got %s", tt.wantAvgPrice, p.AvgPrice)
			}
		})
	}
}

func TestPosition_Reduce_KeepsAvgPrice(t *testing.T) {
	p := &Position{
		Quantity: 10,
		AvgPrice: mustDecimal(t, "0.60"),
		Status:   PositionStatusOpen,
	}

	p.Reduce(4)

	if p.Quantity != 6 {
		t.Errorf("expected quantity 6, got %d", p.Quantity)
	}
	if !p.AvgPrice.Equal(mustDecimal(t, "0.60")) {
		t.Errorf("avg price changed on partial exit: %s", p.AvgPrice)
	}
}

func TestPosition_CostBasis(t *testing.T) {
	p := &Position{Quantity: 10, AvgPrice: mustDecimal(t, "0.60")}

	if !p.CostBasis().Equal(mustDecimal(t, "6")) {
		t.Errorf("expected cost basis 6, got %s", p.CostBasis())
	}
	if !p.CostBasisFor(4).Equal(mustDecimal(t, "2.4")) {
		t.Errorf("expected partial cost basis 2.4, got %s", p.CostBasisFor(4))
	}
}

func TestPosition_IsOpen(t *testing.T) {
	for _, status := range []PositionStatus{PositionStatusClosed, PositionStatusSettled} {
		p := &Position{Status: status}
		if p.IsOpen() {
			t.Errorf("status %s should be terminal", status)
		}
	}

	p := &Position{Status: PositionStatusOpen}
	if !p.IsOpen() {
		t.Error("open position reported not open")
	}
}

func TestDirection_Valid(t *testing.T) {
	if !DirectionA.Valid() || !DirectionB.Valid() {
		t.Error("A and B must be valid directions")
	}
	if Direction("C").Valid() || Direction("").Valid() {
		t.Error("only A and B are valid directions")
	}
}
