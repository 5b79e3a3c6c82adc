package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_ValidateHold(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		held        decimal.Decimal
		amount      decimal.Decimal
		expectError bool
	}{
		{
			name:        "hold within available",
			balance:     decimal.NewFromInt(100),
			held:        decimal.NewFromInt(40),
			amount:      decimal.NewFromInt(60),
			expectError: false,
		},
		{
			name:        "hold exceeds available",
			balance:     decimal.NewFromInt(100),
			held:        decimal.NewFromInt(40),
			amount:      decimal.NewFromInt(61),
			expectError: true,
		},
		{
			name:        "hold on fully held balance",
			balance:     decimal.NewFromInt(100),
			held:        decimal.NewFromInt(100),
			amount:      decimal.NewFromInt(1),
			expectError: true,
		},
		{
			name:        "held ignored by raw balance but not by available",
			balance:     decimal.NewFromInt(10),
			held:        decimal.NewFromInt(6),
			amount:      decimal.NewFromInt(4),
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance, HeldBalance: tt.held}

			err := acc.ValidateHold(tt.amount)

			if tt.expectError && !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("expected ErrInsufficientFunds, got %v", err)
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ApplyRelease_FloorsAtZero(t *testing.T) {
	acc := &Account{
		Balance:     decimal.NewFromInt(100),
		HeldBalance: decimal.NewFromInt(5),
	}

	acc.ApplyRelease(decimal.NewFromInt(8))

	if !acc.HeldBalance.IsZero() {
		t.Errorf("expected held balance 0, got %s", acc.HeldBalance)
	}
}

func TestAccount_ApplyDebit(t *testing.T) {
	tests := []struct {
		name         string
		balance      int64
		held         int64
		amount       int64
		consumeHold  int64
		wantBalance  int64
		wantHeld     int64
	}{
		{
			name:        "debit consuming its hold",
			balance:     100, held: 6,
			amount: 6, consumeHold: 6,
			wantBalance: 94, wantHeld: 0,
		},
		{
			name:        "debit consuming nothing leaves other holds intact",
			balance:     100, held: 4,
			amount: 2, consumeHold: 0,
			wantBalance: 98, wantHeld: 4,
		},
		{
			name:        "consume capped at held balance",
			balance:     100, held: 3,
			amount: 10, consumeHold: 10,
			wantBalance: 90, wantHeld: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{
				Balance:     decimal.NewFromInt(tt.balance),
				HeldBalance: decimal.NewFromInt(tt.held),
			}

			acc.ApplyDebit(decimal.NewFromInt(tt.amount), decimal.NewFromInt(tt.consumeHold))

			if !acc.Balance.Equal(decimal.NewFromInt(tt.wantBalance)) {
				t.Errorf("expected balance %d, got %s", tt.wantBalance, acc.Balance)
			}
			if !acc.HeldBalance.Equal(decimal.NewFromInt(tt.wantHeld)) {
				t.Errorf("expected held %d, got %s", tt.wantHeld, acc.HeldBalance)
			}
		})
	}
}

func TestAccount_Available(t *testing.T) {
	acc := &Account{
		Balance:     decimal.NewFromInt(100),
		HeldBalance: decimal.NewFromInt(37),
	}

	expected := decimal.NewFromInt(63)
	if !acc.Available().Equal(expected) {
		t.Errorf("expected available %s, got %s", expected, acc.Available())
	}
}
