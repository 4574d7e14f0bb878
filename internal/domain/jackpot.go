package domain

import (
	"time"

	"github.com/google/uuid"
)

// JackpotStatus is the lifecycle of a scheduled jackpot event.
type JackpotStatus string

const (
	JackpotOpen  JackpotStatus = "OPEN"
	JackpotDrawn JackpotStatus = "DRAWN"
)

// JackpotEvent is a tenant-scheduled pool draw. Entry fees accumulate into
// PoolAmount until a winner is drawn.
type JackpotEvent struct {
	ID             uuid.UUID     `json:"id"`
	TenantID       uuid.UUID     `json:"tenant_id"`
	GameDate       time.Time     `json:"game_date"`
	EntryAmount    int64         `json:"entry_amount"`
	Currency       string        `json:"currency"`
	Status         JackpotStatus `json:"status"`
	PoolAmount     int64         `json:"pool_amount"`
	WinnerPlayerID *uuid.UUID    `json:"winner_player_id,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// JackpotEntry records one player's buy-in. A player enters an event at most
// once.
type JackpotEntry struct {
	EventID    uuid.UUID  `json:"event_id"`
	PlayerID   uuid.UUID  `json:"player_id"`
	WalletType WalletType `json:"wallet_type"`
	Amount     int64      `json:"amount"`
	EnteredAt  time.Time  `json:"entered_at"`
}
