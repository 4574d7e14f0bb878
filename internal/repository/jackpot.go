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

type jackpotRepo struct{}

// NewJackpotRepository returns a pgx-backed JackpotRepository.
func NewJackpotRepository() JackpotRepository {
	return &jackpotRepo{}
}

const jackpotColumns = `id, tenant_id, game_date, entry_amount, currency, status, pool_amount, winner_player_id, created_at`

func (r *jackpotRepo) FindEventForUpdate(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (*domain.JackpotEvent, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+jackpotColumns+`
		FROM jackpot_events WHERE id = $1
		FOR UPDATE`, eventID)
	return scanJackpotEvent(row)
}

func (r *jackpotRepo) HasEntry(ctx context.Context, db DBTX, eventID, playerID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM jackpot_entries WHERE event_id = $1 AND player_id = $2
		)`, eventID, playerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check jackpot entry: %w", err)
	}
	return exists, nil
}

func (r *jackpotRepo) InsertEntry(ctx context.Context, tx pgx.Tx, e *domain.JackpotEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO jackpot_entries (event_id, player_id, wallet_type, amount, entered_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.EventID, e.PlayerID, string(e.WalletType), infra.Int64ToNumeric(e.Amount), e.EnteredAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.ErrConflictCause("player already entered this jackpot", err)
		}
		return fmt.Errorf("insert jackpot entry: %w", err)
	}
	return nil
}

func (r *jackpotRepo) AddToPool(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, amount int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE jackpot_events
		SET pool_amount = pool_amount + $1
		WHERE id = $2 AND status = 'OPEN'`,
		infra.Int64ToNumeric(amount), eventID)
	if err != nil {
		return fmt.Errorf("add to pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict("jackpot is not open")
	}
	return nil
}

func (r *jackpotRepo) ListEntries(ctx context.Context, db DBTX, eventID uuid.UUID) ([]domain.JackpotEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT event_id, player_id, wallet_type, amount, entered_at
		FROM jackpot_entries
		WHERE event_id = $1
		ORDER BY entered_at ASC, player_id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query jackpot entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JackpotEntry
	for rows.Next() {
		var e domain.JackpotEntry
		var amountNum pgtype.Numeric
		err := rows.Scan(&e.EventID, &e.PlayerID, &e.WalletType, &amountNum, &e.EnteredAt)
		if err != nil {
			return nil, fmt.Errorf("scan jackpot entry: %w", err)
		}
		if e.Amount, err = infra.NumericToInt64(amountNum); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *jackpotRepo) MarkDrawn(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, winner uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE jackpot_events
		SET status = 'DRAWN', winner_player_id = $1
		WHERE id = $2 AND status = 'OPEN'`, winner, eventID)
	if err != nil {
		return fmt.Errorf("mark drawn: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict("jackpot already drawn")
	}
	return nil
}

func scanJackpotEvent(row pgx.Row) (*domain.JackpotEvent, error) {
	var e domain.JackpotEvent
	var entryNum, poolNum pgtype.Numeric
	err := row.Scan(&e.ID, &e.TenantID, &e.GameDate, &entryNum, &e.Currency,
		&e.Status, &poolNum, &e.WinnerPlayerID, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan jackpot event: %w", err)
	}
	if e.EntryAmount, err = infra.NumericToInt64(entryNum); err != nil {
		return nil, fmt.Errorf("convert entry_amount: %w", err)
	}
	if e.PoolAmount, err = infra.NumericToInt64(poolNum); err != nil {
		return nil, fmt.Errorf("convert pool_amount: %w", err)
	}
	return &e, nil
}
