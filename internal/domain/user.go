// internal/domain/user.go
package domain

import (
	"fmt"
	"time"

	"auction-house/internal/util"
)

// MaxTransactionAmount caps single deposits, withdrawals, bids and the total
// blocked amount of a wallet.
const MaxTransactionAmount = 999999

// User represents a portal user. The wallet is embedded: TotalBalance is the
// full balance and BlockedBalance the portion earmarked against active highest
// bids. Invariant: 0 <= BlockedBalance <= TotalBalance.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	TotalBalance   int64     `db:"total_balance" json:"total_balance"`
	BlockedBalance int64     `db:"blocked_balance" json:"blocked_balance"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User with an empty wallet.
func NewUser(name, email string) *User {
	now := time.Now().UTC()
	return &User{
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Available returns the spendable/biddable portion of the wallet.
func (u *User) Available() int64 {
	return u.TotalBalance - u.BlockedBalance
}

// BlockFunds earmarks amount against the wallet. Fails when the resulting
// blocked balance would exceed the total balance.
func (u *User) BlockFunds(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: block amount must not be negative", util.ErrValidation)
	}
	if u.BlockedBalance+amount > u.TotalBalance {
		return util.ErrInsufficientFunds
	}
	u.BlockedBalance += amount
	return nil
}

// UnblockFunds releases up to amount from the blocked balance. The blocked
// balance never goes below zero.
func (u *User) UnblockFunds(amount int64) {
	u.BlockedBalance -= amount
	if u.BlockedBalance < 0 {
		u.BlockedBalance = 0
	}
}

// Deposit adds amount to the total balance.
func (u *User) Deposit(amount int64) error {
	if amount <= 0 || amount > MaxTransactionAmount {
		return fmt.Errorf("%w: deposit amount must be between 1 and %d", util.ErrValidation, MaxTransactionAmount)
	}
	u.TotalBalance += amount
	return nil
}

// Withdraw removes amount from the total balance. Only the available portion
// (total minus blocked) can be withdrawn.
func (u *User) Withdraw(amount int64) error {
	if amount <= 0 || amount > MaxTransactionAmount {
		return fmt.Errorf("%w: withdrawal amount must be between 1 and %d", util.ErrValidation, MaxTransactionAmount)
	}
	if amount > u.Available() {
		return util.ErrInsufficientAvailableBalance
	}
	u.TotalBalance -= amount
	return nil
}
