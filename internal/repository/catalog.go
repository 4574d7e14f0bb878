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

type catalogRepo struct{}

// NewCatalogRepository returns a pgx-backed CatalogRepository.
func NewCatalogRepository() CatalogRepository {
	return &catalogRepo{}
}

// FindGame is tenant-scoped: a game id from another tenant resolves to nil.
func (r *catalogRepo) FindGame(ctx context.Context, db DBTX, tenantID, gameID uuid.UUID) (*domain.TenantGame, error) {
	var g domain.TenantGame
	var minNum, maxNum pgtype.Numeric
	row := db.QueryRow(ctx, `
		SELECT id, tenant_id, title, game_type, min_bet, max_bet, fee_bps, active
		FROM tenant_games
		WHERE id = $1 AND tenant_id = $2`, gameID, tenantID)
	err := row.Scan(&g.ID, &g.TenantID, &g.Title, &g.Type, &minNum, &maxNum, &g.FeeBps, &g.Active)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	if g.MinBet, err = infra.NumericToInt64(minNum); err != nil {
		return nil, fmt.Errorf("convert min_bet: %w", err)
	}
	if g.MaxBet, err = infra.NumericToInt64(maxNum); err != nil {
		return nil, fmt.Errorf("convert max_bet: %w", err)
	}
	return &g, nil
}
