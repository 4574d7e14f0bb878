package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/infra"
)

type betRepo struct{}

// NewBetRepository returns a pgx-backed BetRepository.
func NewBetRepository() BetRepository {
	return &betRepo{}
}

func (r *betRepo) Insert(ctx context.Context, db DBTX, bet *domain.Bet) (*domain.Bet, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO bets (id, tenant_id, player_id, round_id, game_id, wallet_type, amount, fee_amount, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, tenant_id, player_id, round_id, game_id, wallet_type, amount, fee_amount, currency, created_at`,
		uuid.New(),
		bet.TenantID,
		bet.PlayerID,
		bet.RoundID,
		bet.GameID,
		string(bet.WalletType),
		infra.Int64ToNumeric(bet.Amount),
		infra.Int64ToNumeric(bet.FeeAmount),
		bet.Currency,
	)
	return scanBet(row)
}

func (r *betRepo) InsertOutcome(ctx context.Context, db DBTX, outcome *domain.BetOutcome) error {
	_, err := db.Exec(ctx, `
		INSERT INTO bet_outcomes (bet_id, result, payout, settled_at)
		VALUES ($1, $2, $3, $4)`,
		outcome.BetID,
		string(outcome.Result),
		infra.Int64ToNumeric(outcome.Payout),
		outcome.SettledAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.ErrConflictCause("bet already settled", err)
		}
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// DailyActivity only counts settled bets. An unsettled bet never survives its
// transaction, so under the wallet lock the sums are exact.
func (r *betRepo) DailyActivity(ctx context.Context, db DBTX, playerID uuid.UUID, dayStart time.Time) (int64, int64, error) {
	var wageredNum, wonNum pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(b.amount), 0), COALESCE(SUM(o.payout), 0)
		FROM bets b
		JOIN bet_outcomes o ON o.bet_id = b.id
		WHERE b.player_id = $1 AND b.created_at >= $2`,
		playerID, dayStart).Scan(&wageredNum, &wonNum)
	if err != nil {
		return 0, 0, fmt.Errorf("sum daily activity: %w", err)
	}
	wagered, err := infra.NumericToInt64(wageredNum)
	if err != nil {
		return 0, 0, fmt.Errorf("convert wagered: %w", err)
	}
	won, err := infra.NumericToInt64(wonNum)
	if err != nil {
		return 0, 0, fmt.Errorf("convert won: %w", err)
	}
	return wagered, won, nil
}

func (r *betRepo) SumWageredBetween(ctx context.Context, db DBTX, playerID uuid.UUID, from, to time.Time) (int64, error) {
	var sumNum pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM bets
		WHERE player_id = $1 AND created_at >= $2 AND created_at <= $3`,
		playerID, from, to).Scan(&sumNum)
	if err != nil {
		return 0, fmt.Errorf("sum wagered: %w", err)
	}
	return infra.NumericToInt64(sumNum)
}

func scanBet(row pgx.Row) (*domain.Bet, error) {
	var b domain.Bet
	var amountNum, feeNum pgtype.Numeric
	err := row.Scan(&b.ID, &b.TenantID, &b.PlayerID, &b.RoundID, &b.GameID,
		&b.WalletType, &amountNum, &feeNum, &b.Currency, &b.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bet: %w", err)
	}
	if b.Amount, err = infra.NumericToInt64(amountNum); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	if b.FeeAmount, err = infra.NumericToInt64(feeNum); err != nil {
		return nil, fmt.Errorf("convert fee_amount: %w", err)
	}
	return &b, nil
}
