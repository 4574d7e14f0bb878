package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/playhall/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// DB is what a service needs from pgxpool.Pool: plain reads plus the ability
// to open a transaction.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PlayerRepository provides access to players and tenants.
type PlayerRepository interface {
	// FindByID returns a player by ID, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error)

	// FindTenant returns the tenant row carrying the limit defaults.
	FindTenant(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Tenant, error)
}

// WalletRepository provides access to wallets.
type WalletRepository interface {
	// FindSet loads the player's REAL and BONUS wallets without locking.
	FindSet(ctx context.Context, db DBTX, playerID uuid.UUID) (domain.WalletSet, error)

	// LockSet acquires row-level locks on all of the player's wallets,
	// ordered by type so concurrent settlements cannot deadlock.
	LockSet(ctx context.Context, tx pgx.Tx, playerID uuid.UUID) (domain.WalletSet, error)

	// Create inserts a new wallet.
	Create(ctx context.Context, db DBTX, w *domain.Wallet) error

	// UpsertBonus returns the player's BONUS wallet, creating it atomically
	// on the (player_id, type) unique constraint when absent.
	UpsertBonus(ctx context.Context, tx pgx.Tx, playerID uuid.UUID, currency string) (*domain.Wallet, error)

	// ApplyDelta adds delta to the wallet balance with server-side
	// arithmetic, refusing to drive the balance negative. Returns
	// domain.ErrInsufficientFunds when the guard clause rejects the update.
	ApplyDelta(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, delta int64) (*domain.Wallet, error)
}

// LedgerRepository provides access to the append-only wallet ledger.
type LedgerRepository interface {
	// Insert appends one entry with its balance snapshot. Entries are never
	// updated or deleted.
	Insert(ctx context.Context, db DBTX, params domain.PostEntryParams, balanceAfter int64) (*domain.LedgerEntry, error)

	// ListByPlayer returns recent entries across the player's wallets,
	// newest first.
	ListByPlayer(ctx context.Context, db DBTX, playerID uuid.UUID, limit int) ([]domain.LedgerEntry, error)

	// HasCampaignCredit reports whether a bonus_credit referencing the
	// campaign already exists on the wallet (the grant de-duplication key).
	HasCampaignCredit(ctx context.Context, db DBTX, walletID uuid.UUID, campaignID uuid.UUID) (bool, error)
}

// BetRepository provides access to bets and outcomes.
type BetRepository interface {
	// Insert creates the Bet row. Returns the row with its generated id.
	Insert(ctx context.Context, db DBTX, bet *domain.Bet) (*domain.Bet, error)

	// InsertOutcome creates the one-to-one BetOutcome at settlement.
	InsertOutcome(ctx context.Context, db DBTX, outcome *domain.BetOutcome) error

	// DailyActivity sums the player's wagers and payouts since dayStart.
	// Settlement calls this under the wallet lock so the limit check and the
	// debit observe the same history.
	DailyActivity(ctx context.Context, db DBTX, playerID uuid.UUID, dayStart time.Time) (wagered, won int64, err error)

	// SumWageredBetween sums the player's wagers inside a campaign window.
	SumWageredBetween(ctx context.Context, db DBTX, playerID uuid.UUID, from, to time.Time) (int64, error)
}

// SessionRepository provides access to game sessions and rounds.
type SessionRepository interface {
	// FindOpenForUpdate locks and returns the open session for the pair, or
	// nil when none exists.
	FindOpenForUpdate(ctx context.Context, tx pgx.Tx, playerID, gameID uuid.UUID) (*domain.GameSession, error)

	// Create inserts an open session. The partial unique index on
	// (player_id, game_id) WHERE ended_at IS NULL turns a lost race into a
	// conflict that keeps the driver error, so IsRetryable still matches
	// and the settlement retry re-selects the winner's session.
	Create(ctx context.Context, tx pgx.Tx, s *domain.GameSession) (*domain.GameSession, error)

	// Close stamps ended_at on a session.
	Close(ctx context.Context, db DBTX, sessionID uuid.UUID, at time.Time) error

	// CloseOpenForPlayer closes all of the player's open sessions (logout).
	CloseOpenForPlayer(ctx context.Context, db DBTX, playerID uuid.UUID, at time.Time) error

	// NextRoundNumber returns MAX(round_number)+1 within the session.
	NextRoundNumber(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) (int, error)

	// InsertRound creates a round; CloseRound stamps its end time.
	InsertRound(ctx context.Context, tx pgx.Tx, r *domain.GameRound) (*domain.GameRound, error)
	CloseRound(ctx context.Context, tx pgx.Tx, roundID uuid.UUID, at time.Time) error
}

// CatalogRepository provides read-only access to the tenant game catalog.
type CatalogRepository interface {
	// FindGame resolves a tenant-scoped game by id.
	FindGame(ctx context.Context, db DBTX, tenantID, gameID uuid.UUID) (*domain.TenantGame, error)
}

// BonusRepository provides access to campaigns and player bonus grants.
type BonusRepository interface {
	// ActiveThresholdCampaigns returns the tenant's active BET_THRESHOLD
	// campaigns whose window contains now.
	ActiveThresholdCampaigns(ctx context.Context, db DBTX, tenantID uuid.UUID, now time.Time) ([]domain.BonusCampaign, error)

	// FindActiveGrantForUpdate locks and returns the player's single ACTIVE
	// grant, or nil.
	FindActiveGrantForUpdate(ctx context.Context, tx pgx.Tx, playerID uuid.UUID) (*domain.PlayerBonus, error)

	// InsertGrant creates an ACTIVE grant. The partial unique index on
	// (player_id) WHERE status = 'ACTIVE' maps a second active grant to
	// domain.ErrConflict.
	InsertGrant(ctx context.Context, tx pgx.Tx, pb *domain.PlayerBonus) (*domain.PlayerBonus, error)

	// AddWagered adds amount to the grant's cumulative wagering counter.
	AddWagered(ctx context.Context, tx pgx.Tx, grantID uuid.UUID, amount int64) (*domain.PlayerBonus, error)

	// Complete marks a grant COMPLETED.
	Complete(ctx context.Context, tx pgx.Tx, grantID uuid.UUID, at time.Time) error
}

// JackpotRepository provides access to jackpot events and entries.
type JackpotRepository interface {
	FindEventForUpdate(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (*domain.JackpotEvent, error)
	HasEntry(ctx context.Context, db DBTX, eventID, playerID uuid.UUID) (bool, error)
	InsertEntry(ctx context.Context, tx pgx.Tx, e *domain.JackpotEntry) error
	AddToPool(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, amount int64) error
	ListEntries(ctx context.Context, db DBTX, eventID uuid.UUID) ([]domain.JackpotEntry, error)
	MarkDrawn(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, winner uuid.UUID) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event within the caller's transaction.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events, oldest first.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]OutboxRow, error)

	// MarkPublished stamps events as published.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}

// OutboxRow pairs an outbox draft with its table sequence id.
type OutboxRow struct {
	Seq   int64
	Draft domain.OutboxDraft
}
