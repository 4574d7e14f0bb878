package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the domain event types published through the outbox.
type EventType string

const (
	EventWagerSettled   EventType = "casino.wager.settled"
	EventWagerRejected  EventType = "casino.wager.rejected"
	EventDepositPosted  EventType = "casino.wallet.deposit"
	EventWithdrawal     EventType = "casino.wallet.withdrawal"
	EventBonusGranted   EventType = "casino.bonus.granted"
	EventBonusUnlocked  EventType = "casino.bonus.unlocked"
	EventJackpotEntered EventType = "casino.jackpot.entered"
	EventJackpotDrawn   EventType = "casino.jackpot.drawn"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateWallet  AggregateType = "wallet"
	AggregateBonus   AggregateType = "bonus"
	AggregateJackpot AggregateType = "jackpot"
)

// OutboxDraft is a row written to event_outbox inside the same transaction
// as the state change it describes; the consumer forwards it to Kafka.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewEntryPostedEvent builds the wallet event for a ledger entry.
func NewEntryPostedEvent(t EventType, playerID uuid.UUID, entry *LedgerEntry) OutboxDraft {
	payload, _ := json.Marshal(entry)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWallet,
		AggregateID:   entry.WalletID.String(),
		EventType:     t,
		PartitionKey:  playerID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewWagerRejectedEvent records a rejected wager for downstream consumers.
// No money moved; the payload carries the rejection code.
func NewWagerRejectedEvent(playerID, gameID uuid.UUID, amount int64, code string) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"player_id": playerID.String(),
		"game_id":   gameID.String(),
		"amount":    amount,
		"code":      code,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWallet,
		AggregateID:   playerID.String(),
		EventType:     EventWagerRejected,
		PartitionKey:  playerID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewBonusEvent builds a bonus lifecycle event (grant or unlock).
func NewBonusEvent(t EventType, playerID, campaignID uuid.UUID, amount int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"player_id":   playerID.String(),
		"campaign_id": campaignID.String(),
		"amount":      amount,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBonus,
		AggregateID:   playerID.String(),
		EventType:     t,
		PartitionKey:  playerID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewJackpotEvent builds a jackpot lifecycle event.
func NewJackpotEvent(t EventType, eventID, playerID uuid.UUID, amount int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"jackpot_event_id": eventID.String(),
		"player_id":        playerID.String(),
		"amount":           amount,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateJackpot,
		AggregateID:   eventID.String(),
		EventType:     t,
		PartitionKey:  eventID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
