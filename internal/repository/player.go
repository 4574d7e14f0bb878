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

type playerRepo struct{}

// NewPlayerRepository returns a pgx-backed PlayerRepository.
func NewPlayerRepository() PlayerRepository {
	return &playerRepo{}
}

func (r *playerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error) {
	row := db.QueryRow(ctx, `
		SELECT id, tenant_id, username, status, max_single_bet, daily_bet_limit, daily_loss_limit, created_at
		FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (r *playerRepo) FindTenant(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Tenant, error) {
	var t domain.Tenant
	var maxNum, betNum, lossNum pgtype.Numeric
	row := db.QueryRow(ctx, `
		SELECT id, name, currency, max_single_bet, daily_bet_limit, daily_loss_limit, created_at
		FROM tenants WHERE id = $1`, id)
	err := row.Scan(&t.ID, &t.Name, &t.Currency, &maxNum, &betNum, &lossNum, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	if t.MaxSingleBet, err = infra.NumericToInt64(maxNum); err != nil {
		return nil, fmt.Errorf("convert max_single_bet: %w", err)
	}
	if t.DailyBetLimit, err = infra.NumericToInt64(betNum); err != nil {
		return nil, fmt.Errorf("convert daily_bet_limit: %w", err)
	}
	if t.DailyLossLimit, err = infra.NumericToInt64(lossNum); err != nil {
		return nil, fmt.Errorf("convert daily_loss_limit: %w", err)
	}
	return &t, nil
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	var maxNum, betNum, lossNum pgtype.Numeric
	err := row.Scan(&p.ID, &p.TenantID, &p.Username, &p.Status, &maxNum, &betNum, &lossNum, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}
	if p.MaxSingleBet, err = infra.NumericToInt64(maxNum); err != nil {
		return nil, fmt.Errorf("convert max_single_bet: %w", err)
	}
	if p.DailyBetLimit, err = infra.NumericToInt64(betNum); err != nil {
		return nil, fmt.Errorf("convert daily_bet_limit: %w", err)
	}
	if p.DailyLossLimit, err = infra.NumericToInt64(lossNum); err != nil {
		return nil, fmt.Errorf("convert daily_loss_limit: %w", err)
	}
	return &p, nil
}
