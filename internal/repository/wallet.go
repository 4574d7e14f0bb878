package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/infra"
)

type walletRepo struct{}

// NewWalletRepository returns a pgx-backed WalletRepository.
func NewWalletRepository() WalletRepository {
	return &walletRepo{}
}

const walletColumns = `id, player_id, type, balance, currency, created_at, updated_at`

func (r *walletRepo) FindSet(ctx context.Context, db DBTX, playerID uuid.UUID) (domain.WalletSet, error) {
	rows, err := db.Query(ctx, `
		SELECT `+walletColumns+`
		FROM wallets WHERE player_id = $1
		ORDER BY type DESC`, playerID)
	if err != nil {
		return domain.WalletSet{}, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()
	return collectWalletSet(rows)
}

// LockSet orders the locks by type so two settlements for the same player
// always acquire them in the same sequence.
func (r *walletRepo) LockSet(ctx context.Context, tx pgx.Tx, playerID uuid.UUID) (domain.WalletSet, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+walletColumns+`
		FROM wallets WHERE player_id = $1
		ORDER BY type DESC
		FOR UPDATE`, playerID)
	if err != nil {
		return domain.WalletSet{}, fmt.Errorf("lock wallets: %w", err)
	}
	defer rows.Close()
	return collectWalletSet(rows)
}

func (r *walletRepo) Create(ctx context.Context, db DBTX, w *domain.Wallet) error {
	_, err := db.Exec(ctx, `
		INSERT INTO wallets (id, player_id, type, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID,
		w.PlayerID,
		string(w.Type),
		infra.Int64ToNumeric(w.Balance),
		w.Currency,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.ErrConflictCause("wallet already exists", err)
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// UpsertBonus relies on the (player_id, type) unique constraint so two
// concurrent grants converge on the same row instead of failing.
func (r *walletRepo) UpsertBonus(ctx context.Context, tx pgx.Tx, playerID uuid.UUID, currency string) (*domain.Wallet, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO wallets (id, player_id, type, balance, currency, created_at, updated_at)
		VALUES ($1, $2, 'BONUS', 0, $3, now(), now())
		ON CONFLICT (player_id, type) DO UPDATE SET updated_at = now()
		RETURNING `+walletColumns,
		uuid.New(), playerID, currency)
	return scanWallet(row)
}

func (r *walletRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, delta int64) (*domain.Wallet, error) {
	row := tx.QueryRow(ctx, `
		UPDATE wallets
		SET balance = balance + $1, updated_at = now()
		WHERE id = $2 AND balance + $1 >= 0
		RETURNING `+walletColumns,
		infra.Int64ToNumeric(delta), walletID)
	w, err := scanWallet(row)
	if err != nil {
		return nil, err
	}
	if w == nil {
		// Zero rows: either the wallet vanished or the guard clause refused
		// to drive the balance negative. Both read as insufficient funds
		// under the row lock the caller holds.
		return nil, domain.ErrInsufficientFunds("insufficient funds")
	}
	return w, nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	var balNum pgtype.Numeric
	err := row.Scan(&w.ID, &w.PlayerID, &w.Type, &balNum, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	w.Balance, err = infra.NumericToInt64(balNum)
	if err != nil {
		return nil, fmt.Errorf("convert balance: %w", err)
	}
	return &w, nil
}

func collectWalletSet(rows pgx.Rows) (domain.WalletSet, error) {
	var set domain.WalletSet
	for rows.Next() {
		var w domain.Wallet
		var balNum pgtype.Numeric
		err := rows.Scan(&w.ID, &w.PlayerID, &w.Type, &balNum, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return domain.WalletSet{}, fmt.Errorf("scan wallet row: %w", err)
		}
		w.Balance, err = infra.NumericToInt64(balNum)
		if err != nil {
			return domain.WalletSet{}, fmt.Errorf("convert balance: %w", err)
		}
		switch w.Type {
		case domain.WalletReal:
			wCopy := w
			set.Real = &wCopy
		case domain.WalletBonus:
			wCopy := w
			set.Bonus = &wCopy
		}
	}
	return set, rows.Err()
}
