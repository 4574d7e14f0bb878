package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/repository"
)

// Service exposes the player-facing wallet operations: balances, deposits,
// withdrawals, and ledger history. Settlement has its own orchestrator.
type Service struct {
	pool    *pgxpool.Pool
	engine  *Engine
	wallets repository.WalletRepository
	entries repository.LedgerRepository
}

// NewService creates a wallet service.
func NewService(pool *pgxpool.Pool, engine *Engine, wallets repository.WalletRepository, entries repository.LedgerRepository) *Service {
	return &Service{pool: pool, engine: engine, wallets: wallets, entries: entries}
}

// Balances returns the player's wallet pair without locking.
func (s *Service) Balances(ctx context.Context, playerID uuid.UUID) (domain.WalletSet, error) {
	set, err := s.wallets.FindSet(ctx, s.pool, playerID)
	if err != nil {
		return domain.WalletSet{}, err
	}
	if set.Real == nil {
		return domain.WalletSet{}, domain.ErrAccountIntegrity(fmt.Sprintf("player %s has no REAL wallet", playerID))
	}
	return set, nil
}

// History returns the player's recent ledger entries, newest first.
func (s *Service) History(ctx context.Context, playerID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	return s.entries.ListByPlayer(ctx, s.pool, playerID, limit)
}

// Deposit credits the player's REAL wallet.
func (s *Service) Deposit(ctx context.Context, playerID uuid.UUID, amount int64) (*domain.LedgerEntry, *domain.Wallet, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, nil, domain.ErrValidation(err.Error())
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	set, err := s.engine.LockWalletSet(ctx, tx, playerID)
	if err != nil {
		return nil, nil, err
	}

	entry, wallet, err := s.engine.PostEntry(ctx, tx, domain.PostEntryParams{
		WalletID:      set.Real.ID,
		Type:          domain.EntryDeposit,
		Amount:        amount,
		ReferenceType: domain.RefDeposit,
		ReferenceID:   uuid.NewString(),
	}, domain.EventDepositPosted)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, domain.ErrInternal("commit tx", err)
	}
	return entry, wallet, nil
}

// Withdraw debits the player's REAL wallet. Withdrawals never touch BONUS
// funds; those leave the bonus wallet only through wagering or unlock.
func (s *Service) Withdraw(ctx context.Context, playerID uuid.UUID, amount int64) (*domain.LedgerEntry, *domain.Wallet, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, nil, domain.ErrValidation(err.Error())
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	set, err := s.engine.LockWalletSet(ctx, tx, playerID)
	if err != nil {
		return nil, nil, err
	}
	if !set.Real.CanCover(amount) {
		return nil, nil, domain.ErrInsufficientFunds("insufficient funds")
	}

	entry, wallet, err := s.engine.PostEntry(ctx, tx, domain.PostEntryParams{
		WalletID:      set.Real.ID,
		Type:          domain.EntryWithdrawal,
		Amount:        -amount,
		ReferenceType: domain.RefWithdrawal,
		ReferenceID:   uuid.NewString(),
	}, domain.EventWithdrawal)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, domain.ErrInternal("commit tx", err)
	}
	return entry, wallet, nil
}
