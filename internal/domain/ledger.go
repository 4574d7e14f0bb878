package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntryType enumerates the signed effect types of the wallet ledger.
type EntryType string

const (
	EntryDeposit      EntryType = "deposit"
	EntryWithdrawal   EntryType = "withdrawal"
	EntryBetDebit     EntryType = "bet_debit"
	EntryWinCredit    EntryType = "win_credit"
	EntryBonusCredit  EntryType = "bonus_credit"
	EntryBonusUnlock  EntryType = "bonus_unlock"
	EntryJackpotEntry EntryType = "jackpot_entry"
	EntryJackpotWin   EntryType = "jackpot_win"
)

// ReferenceType tags the originating domain object of a ledger entry.
type ReferenceType string

const (
	RefBet          ReferenceType = "bet"
	RefCampaign     ReferenceType = "campaign"
	RefPlayerBonus  ReferenceType = "player_bonus"
	RefJackpotEvent ReferenceType = "jackpot_event"
	RefDeposit      ReferenceType = "deposit"
	RefWithdrawal   ReferenceType = "withdrawal"
)

// LedgerEntry is an immutable, append-only record of a balance-affecting
// event. Amount is signed; BalanceAfter snapshots the wallet balance the
// entry produced. Corrections are made by inserting compensating entries,
// never by updating existing rows.
type LedgerEntry struct {
	ID            uuid.UUID      `json:"id"`
	WalletID      uuid.UUID      `json:"wallet_id"`
	Type          EntryType      `json:"type"`
	Amount        int64          `json:"amount"` // signed, minor units
	BalanceAfter  int64          `json:"balance_after"`
	ReferenceType *ReferenceType `json:"reference_type,omitempty"`
	ReferenceID   *string        `json:"reference_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// PostEntryParams is the input to the atomic PostEntry primitive.
type PostEntryParams struct {
	WalletID      uuid.UUID
	Type          EntryType
	Amount        int64 // signed delta applied to the wallet balance
	ReferenceType ReferenceType
	ReferenceID   string
}

// Ref builds the optional reference pair for a ledger entry row.
func (p PostEntryParams) Ref() (*ReferenceType, *string) {
	if p.ReferenceType == "" {
		return nil, nil
	}
	rt := p.ReferenceType
	var rid *string
	if p.ReferenceID != "" {
		id := p.ReferenceID
		rid = &id
	}
	return &rt, rid
}
