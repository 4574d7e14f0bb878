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

type ledgerRepo struct{}

// NewLedgerRepository returns a pgx-backed LedgerRepository.
func NewLedgerRepository() LedgerRepository {
	return &ledgerRepo{}
}

const ledgerColumns = `id, wallet_id, type, amount, balance_after, reference_type, reference_id, created_at`

func (r *ledgerRepo) Insert(ctx context.Context, db DBTX, params domain.PostEntryParams, balanceAfter int64) (*domain.LedgerEntry, error) {
	refType, refID := params.Ref()
	row := db.QueryRow(ctx, `
		INSERT INTO wallet_ledger (id, wallet_id, type, amount, balance_after, reference_type, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+ledgerColumns,
		uuid.New(),
		params.WalletID,
		string(params.Type),
		infra.Int64ToNumeric(params.Amount),
		infra.Int64ToNumeric(balanceAfter),
		refType,
		refID,
	)
	entry, err := scanLedgerEntry(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, domain.ErrConflictCause("duplicate ledger reference", err)
		}
		return nil, err
	}
	return entry, nil
}

func (r *ledgerRepo) ListByPlayer(ctx context.Context, db DBTX, playerID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT l.id, l.wallet_id, l.type, l.amount, l.balance_after, l.reference_type, l.reference_id, l.created_at
		FROM wallet_ledger l
		JOIN wallets w ON w.id = l.wallet_id
		WHERE w.player_id = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var amountNum, afterNum pgtype.Numeric
		err := rows.Scan(&e.ID, &e.WalletID, &e.Type, &amountNum, &afterNum, &e.ReferenceType, &e.ReferenceID, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		if e.Amount, err = infra.NumericToInt64(amountNum); err != nil {
			return nil, err
		}
		if e.BalanceAfter, err = infra.NumericToInt64(afterNum); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *ledgerRepo) HasCampaignCredit(ctx context.Context, db DBTX, walletID uuid.UUID, campaignID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM wallet_ledger
			WHERE wallet_id = $1 AND type = 'bonus_credit'
			  AND reference_type = 'campaign' AND reference_id = $2
		)`, walletID, campaignID.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check campaign credit: %w", err)
	}
	return exists, nil
}

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var amountNum, afterNum pgtype.Numeric
	err := row.Scan(&e.ID, &e.WalletID, &e.Type, &amountNum, &afterNum, &e.ReferenceType, &e.ReferenceID, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	if e.Amount, err = infra.NumericToInt64(amountNum); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	if e.BalanceAfter, err = infra.NumericToInt64(afterNum); err != nil {
		return nil, fmt.Errorf("convert balance_after: %w", err)
	}
	return &e, nil
}
