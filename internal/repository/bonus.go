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

type bonusRepo struct{}

// NewBonusRepository returns a pgx-backed BonusRepository.
func NewBonusRepository() BonusRepository {
	return &bonusRepo{}
}

const grantColumns = `id, player_id, campaign_id, status, initial_amount, wager_target, wagered, awarded_at, completed_at`

func (r *bonusRepo) ActiveThresholdCampaigns(ctx context.Context, db DBTX, tenantID uuid.UUID, now time.Time) ([]domain.BonusCampaign, error) {
	rows, err := db.Query(ctx, `
		SELECT id, tenant_id, name, campaign_type, amount, wager_target, wagering_multiplier,
		       starts_at, ends_at, active, created_at
		FROM bonus_campaigns
		WHERE tenant_id = $1 AND campaign_type = 'BET_THRESHOLD' AND active = true
		  AND starts_at <= $2 AND (ends_at IS NULL OR ends_at >= $2)
		ORDER BY created_at ASC`, tenantID, now)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.BonusCampaign
	for rows.Next() {
		var c domain.BonusCampaign
		var amountNum, targetNum pgtype.Numeric
		err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Type, &amountNum, &targetNum,
			&c.WageringMultiplier, &c.StartsAt, &c.EndsAt, &c.Active, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		if c.Amount, err = infra.NumericToInt64(amountNum); err != nil {
			return nil, err
		}
		if c.WagerTarget, err = infra.NumericToInt64(targetNum); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *bonusRepo) FindActiveGrantForUpdate(ctx context.Context, tx pgx.Tx, playerID uuid.UUID) (*domain.PlayerBonus, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+grantColumns+`
		FROM player_bonuses
		WHERE player_id = $1 AND status = 'ACTIVE'
		FOR UPDATE`, playerID)
	return scanGrant(row)
}

func (r *bonusRepo) InsertGrant(ctx context.Context, tx pgx.Tx, pb *domain.PlayerBonus) (*domain.PlayerBonus, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO player_bonuses (id, player_id, campaign_id, status, initial_amount, wager_target, wagered, awarded_at)
		VALUES ($1, $2, $3, 'ACTIVE', $4, $5, 0, $6)
		RETURNING `+grantColumns,
		uuid.New(),
		pb.PlayerID,
		pb.CampaignID,
		infra.Int64ToNumeric(pb.InitialAmount),
		infra.Int64ToNumeric(pb.WagerTarget),
		pb.AwardedAt,
	)
	grant, err := scanGrant(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, domain.ErrConflictCause("player already holds an active bonus", err)
		}
		return nil, err
	}
	return grant, nil
}

func (r *bonusRepo) AddWagered(ctx context.Context, tx pgx.Tx, grantID uuid.UUID, amount int64) (*domain.PlayerBonus, error) {
	row := tx.QueryRow(ctx, `
		UPDATE player_bonuses
		SET wagered = wagered + $1
		WHERE id = $2 AND status = 'ACTIVE'
		RETURNING `+grantColumns,
		infra.Int64ToNumeric(amount), grantID)
	grant, err := scanGrant(row)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, domain.ErrNotFound("active bonus", grantID.String())
	}
	return grant, nil
}

func (r *bonusRepo) Complete(ctx context.Context, tx pgx.Tx, grantID uuid.UUID, at time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE player_bonuses
		SET status = 'COMPLETED', completed_at = $1
		WHERE id = $2 AND status = 'ACTIVE'`, at, grantID)
	if err != nil {
		return fmt.Errorf("complete bonus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("active bonus", grantID.String())
	}
	return nil
}

func scanGrant(row pgx.Row) (*domain.PlayerBonus, error) {
	var pb domain.PlayerBonus
	var initNum, targetNum, wageredNum pgtype.Numeric
	err := row.Scan(&pb.ID, &pb.PlayerID, &pb.CampaignID, &pb.Status,
		&initNum, &targetNum, &wageredNum, &pb.AwardedAt, &pb.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bonus grant: %w", err)
	}
	if pb.InitialAmount, err = infra.NumericToInt64(initNum); err != nil {
		return nil, fmt.Errorf("convert initial_amount: %w", err)
	}
	if pb.WagerTarget, err = infra.NumericToInt64(targetNum); err != nil {
		return nil, fmt.Errorf("convert wager_target: %w", err)
	}
	if pb.Wagered, err = infra.NumericToInt64(wageredNum); err != nil {
		return nil, fmt.Errorf("convert wagered: %w", err)
	}
	return &pb, nil
}
