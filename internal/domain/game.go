package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameType is the closed variant set of chance games the platform runs.
type GameType string

const (
	GameSlot    GameType = "SLOT"
	GameDice    GameType = "DICE"
	GameWheel   GameType = "WHEEL"
	GameCoin    GameType = "COIN"
	GameHighLow GameType = "HIGHLOW"
)

// TenantGame is the tenant-scoped catalog row for a playable game: read-only
// reference data supplied by the catalog collaborator.
type TenantGame struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Title    string    `json:"title"`
	Type     GameType  `json:"type"`
	MinBet   int64     `json:"min_bet"`
	MaxBet   int64     `json:"max_bet"` // 0 = no cap
	FeeBps   int32     `json:"fee_bps"` // platform fee, basis points of the wager
	Active   bool      `json:"active"`
}

// PlatformFee computes the fee retained on a wager. Revenue reporting only;
// it never changes the player's payout.
func (g *TenantGame) PlatformFee(amount int64) int64 {
	return amount * int64(g.FeeBps) / 10_000
}

// GameSession groups consecutive rounds of one game for one player. A nil
// EndedAt means the session is open; at most one open session exists per
// (player, game) pair.
type GameSession struct {
	ID        uuid.UUID  `json:"id"`
	PlayerID  uuid.UUID  `json:"player_id"`
	GameID    uuid.UUID  `json:"game_id"`
	IPAddress string     `json:"ip_address,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Open reports whether the session is still open.
func (s *GameSession) Open() bool { return s != nil && s.EndedAt == nil }

// Expired reports whether an open session has outlived the inactivity window.
func (s *GameSession) Expired(now time.Time, ttl time.Duration) bool {
	return s.Open() && now.Sub(s.StartedAt) > ttl
}

// GameRound is one wager-to-outcome cycle inside a session. Round numbers are
// unique and strictly increasing within the session.
type GameRound struct {
	ID          uuid.UUID  `json:"id"`
	SessionID   uuid.UUID  `json:"session_id"`
	RoundNumber int        `json:"round_number"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

// OutcomeResult classifies a settled bet.
type OutcomeResult string

const (
	OutcomeWin  OutcomeResult = "WIN"
	OutcomeLoss OutcomeResult = "LOSS"
)

// Bet is one wager attempt.
type Bet struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	PlayerID   uuid.UUID  `json:"player_id"`
	RoundID    uuid.UUID  `json:"round_id"`
	GameID     uuid.UUID  `json:"game_id"`
	WalletType WalletType `json:"wallet_type"`
	Amount     int64      `json:"amount"`
	FeeAmount  int64      `json:"fee_amount"`
	Currency   string     `json:"currency"`
	CreatedAt  time.Time  `json:"created_at"`
}

// BetOutcome is created exactly once per Bet, at settlement.
type BetOutcome struct {
	BetID     uuid.UUID     `json:"bet_id"`
	Result    OutcomeResult `json:"result"`
	Payout    int64         `json:"payout"`
	SettledAt time.Time     `json:"settled_at"`
}
