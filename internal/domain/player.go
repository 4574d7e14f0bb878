package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlayerStatus is the account lifecycle state maintained by the admin layer.
type PlayerStatus string

const (
	PlayerActive    PlayerStatus = "ACTIVE"
	PlayerSuspended PlayerStatus = "SUSPENDED"
)

// Player belongs to exactly one tenant. The three limit fields are per-player
// overrides; zero means "inherit the tenant default".
type Player struct {
	ID             uuid.UUID    `json:"id"`
	TenantID       uuid.UUID    `json:"tenant_id"`
	Username       string       `json:"username"`
	Status         PlayerStatus `json:"status"`
	MaxSingleBet   int64        `json:"max_single_bet"`
	DailyBetLimit  int64        `json:"daily_bet_limit"`
	DailyLossLimit int64        `json:"daily_loss_limit"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Tenant is an independent casino operator on the shared platform. Its limit
// fields are the defaults players inherit; zero means unlimited.
type Tenant struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Currency       string    `json:"currency"`
	MaxSingleBet   int64     `json:"max_single_bet"`
	DailyBetLimit  int64     `json:"daily_bet_limit"`
	DailyLossLimit int64     `json:"daily_loss_limit"`
	CreatedAt      time.Time `json:"created_at"`
}
