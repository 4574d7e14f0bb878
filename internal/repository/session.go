package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/playhall/platform/internal/domain"
)

type sessionRepo struct{}

// NewSessionRepository returns a pgx-backed SessionRepository.
func NewSessionRepository() SessionRepository {
	return &sessionRepo{}
}

const sessionColumns = `id, player_id, game_id, ip_address, started_at, ended_at`

func (r *sessionRepo) FindOpenForUpdate(ctx context.Context, tx pgx.Tx, playerID, gameID uuid.UUID) (*domain.GameSession, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM game_sessions
		WHERE player_id = $1 AND game_id = $2 AND ended_at IS NULL
		FOR UPDATE`, playerID, gameID)
	return scanSession(row)
}

func (r *sessionRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.GameSession) (*domain.GameSession, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO game_sessions (id, player_id, game_id, ip_address, started_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+sessionColumns,
		s.ID, s.PlayerID, s.GameID, s.IPAddress, s.StartedAt)
	created, err := scanSession(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, domain.ErrConflictCause("open session already exists", err)
		}
		return nil, err
	}
	return created, nil
}

func (r *sessionRepo) Close(ctx context.Context, db DBTX, sessionID uuid.UUID, at time.Time) error {
	tag, err := db.Exec(ctx, `
		UPDATE game_sessions SET ended_at = $1
		WHERE id = $2 AND ended_at IS NULL`, at, sessionID)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("open session", sessionID.String())
	}
	return nil
}

func (r *sessionRepo) CloseOpenForPlayer(ctx context.Context, db DBTX, playerID uuid.UUID, at time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE game_sessions SET ended_at = $1
		WHERE player_id = $2 AND ended_at IS NULL`, at, playerID)
	if err != nil {
		return fmt.Errorf("close player sessions: %w", err)
	}
	return nil
}

// NextRoundNumber is only safe under the session row lock taken by
// FindOpenForUpdate; the caller holds it for the whole settlement.
func (r *sessionRepo) NextRoundNumber(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) (int, error) {
	var next int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(round_number), 0) + 1
		FROM game_rounds WHERE session_id = $1`, sessionID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next round number: %w", err)
	}
	return next, nil
}

func (r *sessionRepo) InsertRound(ctx context.Context, tx pgx.Tx, round *domain.GameRound) (*domain.GameRound, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO game_rounds (id, session_id, round_number, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, session_id, round_number, started_at, ended_at`,
		round.ID, round.SessionID, round.RoundNumber, round.StartedAt)
	var r2 domain.GameRound
	err := row.Scan(&r2.ID, &r2.SessionID, &r2.RoundNumber, &r2.StartedAt, &r2.EndedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, domain.ErrConflictCause("round number already taken", err)
		}
		return nil, fmt.Errorf("insert round: %w", err)
	}
	return &r2, nil
}

func (r *sessionRepo) CloseRound(ctx context.Context, tx pgx.Tx, roundID uuid.UUID, at time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE game_rounds SET ended_at = $1 WHERE id = $2`, at, roundID)
	if err != nil {
		return fmt.Errorf("close round: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row) (*domain.GameSession, error) {
	var s domain.GameSession
	err := row.Scan(&s.ID, &s.PlayerID, &s.GameID, &s.IPAddress, &s.StartedAt, &s.EndedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &s, nil
}
