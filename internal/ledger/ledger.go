package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/repository"
)

// Engine provides the foundational wallet-ledger operations:
//  1. LockWalletSet: row-level pessimistic locks on the player's wallets
//  2. PostEntry: atomic balance update + append-only insert + outbox event
//
// Every money movement on the platform goes through PostEntry, so the
// invariant balance == SUM(ledger.amount) holds per wallet by construction.
type Engine struct {
	wallets repository.WalletRepository
	entries repository.LedgerRepository
	outbox  repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	wallets repository.WalletRepository,
	entries repository.LedgerRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{wallets: wallets, entries: entries, outbox: outbox}
}

// LockWalletSet locks the player's wallets in type order and returns them.
// Must be called within a transaction. An active player without a REAL
// wallet is a provisioning defect, not a caller error.
func (e *Engine) LockWalletSet(ctx context.Context, tx pgx.Tx, playerID uuid.UUID) (domain.WalletSet, error) {
	set, err := e.wallets.LockSet(ctx, tx, playerID)
	if err != nil {
		return domain.WalletSet{}, fmt.Errorf("lock wallets: %w", err)
	}
	if set.Real == nil {
		return domain.WalletSet{}, domain.ErrAccountIntegrity(fmt.Sprintf("player %s has no REAL wallet", playerID))
	}
	return set, nil
}

// EnsureBonusWallet returns the player's BONUS wallet, creating it if absent.
// Must be called within a transaction.
func (e *Engine) EnsureBonusWallet(ctx context.Context, tx pgx.Tx, playerID uuid.UUID, currency string) (*domain.Wallet, error) {
	w, err := e.wallets.UpsertBonus(ctx, tx, playerID, currency)
	if err != nil {
		return nil, fmt.Errorf("ensure bonus wallet: %w", err)
	}
	return w, nil
}

// PostEntry atomically applies the signed delta to the wallet and appends the
// ledger entry carrying the post-update balance snapshot, then stages the
// outbox event. All three writes run within the caller's transaction.
func (e *Engine) PostEntry(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams, eventType domain.EventType) (*domain.LedgerEntry, *domain.Wallet, error) {
	wallet, err := e.wallets.ApplyDelta(ctx, tx, params.WalletID, params.Amount)
	if err != nil {
		return nil, nil, err
	}

	entry, err := e.entries.Insert(ctx, tx, params, wallet.Balance)
	if err != nil {
		return nil, nil, err
	}

	event := domain.NewEntryPostedEvent(eventType, wallet.PlayerID, entry)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, wallet, nil
}

// StageEvent writes an outbox event outside a money movement, e.g. a wager
// rejection notice.
func (e *Engine) StageEvent(ctx context.Context, db repository.DBTX, draft domain.OutboxDraft) error {
	return e.outbox.Insert(ctx, db, draft)
}
