package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletType distinguishes real-money wallets from promotional ones.
type WalletType string

const (
	WalletReal  WalletType = "REAL"
	WalletBonus WalletType = "BONUS"
)

// Valid reports whether t is a known wallet type.
func (t WalletType) Valid() bool {
	return t == WalletReal || t == WalletBonus
}

// Wallet is a typed balance owned by one player. At most one wallet exists
// per (player, type); its balance always equals the sum of its committed
// ledger entries.
type Wallet struct {
	ID        uuid.UUID  `json:"id"`
	PlayerID  uuid.UUID  `json:"player_id"`
	Type      WalletType `json:"type"`
	Balance   int64      `json:"balance"` // minor units
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CanCover reports whether the wallet holds at least amount.
func (w *Wallet) CanCover(amount int64) bool {
	return w != nil && w.Balance >= amount
}

// WalletSet is a player's wallet pair as loaded (and locked) together.
// Real is never nil for an active player; Bonus may be.
type WalletSet struct {
	Real  *Wallet
	Bonus *Wallet
}

// ByType returns the wallet of the given type, or nil.
func (s WalletSet) ByType(t WalletType) *Wallet {
	switch t {
	case WalletReal:
		return s.Real
	case WalletBonus:
		return s.Bonus
	}
	return nil
}
