package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's free and held funds. HeldBalance is the portion of
// Balance earmarked against open positions; it never represents extra money.
type Account struct {
	UserID      string
	Balance     decimal.Decimal
	HeldBalance decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Available returns the spendable portion of the balance.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.HeldBalance)
}

// ValidateHold checks that amount can be reserved out of the available balance.
func (a *Account) ValidateHold(amount decimal.Decimal) error {
	if amount.GreaterThan(a.Available()) {
		return fmt.Errorf("%w: available %s, required %s", ErrInsufficientFunds, a.Available(), amount)
	}
	return nil
}

// ValidateDebit checks that amount can leave the balance entirely.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if amount.GreaterThan(a.Balance) {
		return fmt.Errorf("%w: balance %s, required %s", ErrInsufficientFunds, a.Balance, amount)
	}
	return nil
}

// ApplyHold reserves amount against the balance.
func (a *Account) ApplyHold(amount decimal.Decimal) {
	a.HeldBalance = a.HeldBalance.Add(amount)
}

// ApplyRelease returns amount from the held balance, floored at zero.
func (a *Account) ApplyRelease(amount decimal.Decimal) {
	a.HeldBalance = a.HeldBalance.Sub(amount)
	if a.HeldBalance.IsNegative() {
		a.HeldBalance = decimal.Zero
	}
}

// ApplyCredit increases the free balance.
func (a *Account) ApplyCredit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
}

// ApplyDebit removes amount from the balance and consumes up to consumeHold
// of the held balance. The caller decides how much hold the debit unwinds:
// a settlement debit consumes the position's hold, a realized-loss debit
// consumes nothing because its hold was already released.
func (a *Account) ApplyDebit(amount, consumeHold decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount)
	if consumeHold.GreaterThan(a.HeldBalance) {
		consumeHold = a.HeldBalance
	}
	a.HeldBalance = a.HeldBalance.Sub(consumeHold)
}
