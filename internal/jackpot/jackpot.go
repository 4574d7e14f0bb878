// Package jackpot runs tenant-scheduled pool draws: buy-ins accumulate into
// a pool that a uniform random draw pays out to one entrant.
package jackpot

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/ledger"
	"github.com/playhall/platform/internal/policy"
	"github.com/playhall/platform/internal/repository"
)

// Service handles jackpot entries and draws.
type Service struct {
	pool   *pgxpool.Pool
	engine *ledger.Engine
	events repository.JackpotRepository
	outbox repository.OutboxRepository
	logger *slog.Logger
	newRNG func() *rand.Rand
}

// NewService creates a jackpot service.
func NewService(pool *pgxpool.Pool, engine *ledger.Engine, events repository.JackpotRepository, outbox repository.OutboxRepository, logger *slog.Logger) *Service {
	return &Service{
		pool:   pool,
		engine: engine,
		events: events,
		outbox: outbox,
		logger: logger,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Enter buys the player into an open jackpot event. One entry per player per
// event; the entry fee is debited like any other wager.
func (s *Service) Enter(ctx context.Context, tenantID, playerID, eventID uuid.UUID, pref domain.WalletType) (*domain.JackpotEntry, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	event, err := s.events.FindEventForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.TenantID != tenantID {
		return nil, domain.ErrNotFound("jackpot event", eventID.String())
	}
	if event.Status != domain.JackpotOpen {
		return nil, domain.ErrConflict("jackpot is not open for entries")
	}

	already, err := s.events.HasEntry(ctx, tx, eventID, playerID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, domain.ErrConflict("player already entered this jackpot")
	}

	set, err := s.engine.LockWalletSet(ctx, tx, playerID)
	if err != nil {
		return nil, err
	}
	funding, err := policy.SelectFundingWallet(set, event.EntryAmount, pref)
	if err != nil {
		return nil, err
	}

	if _, _, err := s.engine.PostEntry(ctx, tx, domain.PostEntryParams{
		WalletID:      funding.ID,
		Type:          domain.EntryJackpotEntry,
		Amount:        -event.EntryAmount,
		ReferenceType: domain.RefJackpotEvent,
		ReferenceID:   event.ID.String(),
	}, domain.EventJackpotEntered); err != nil {
		return nil, err
	}

	entry := &domain.JackpotEntry{
		EventID:    event.ID,
		PlayerID:   playerID,
		WalletType: funding.Type,
		Amount:     event.EntryAmount,
		EnteredAt:  time.Now(),
	}
	if err := s.events.InsertEntry(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := s.events.AddToPool(ctx, tx, event.ID, event.EntryAmount); err != nil {
		return nil, err
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewJackpotEvent(domain.EventJackpotEntered, event.ID, playerID, event.EntryAmount)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	return entry, nil
}

// Draw picks one entrant uniformly at random, credits the pool to their
// REAL wallet, and closes the event. Idempotent at the database level: a
// second draw loses the OPEN status guard.
func (s *Service) Draw(ctx context.Context, tenantID, eventID uuid.UUID) (*domain.JackpotEvent, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	event, err := s.events.FindEventForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.TenantID != tenantID {
		return nil, domain.ErrNotFound("jackpot event", eventID.String())
	}
	if event.Status != domain.JackpotOpen {
		return nil, domain.ErrConflict("jackpot already drawn")
	}

	entries, err := s.events.ListEntries(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrValidation("jackpot has no entries")
	}

	winner := entries[s.newRNG().Intn(len(entries))]

	set, err := s.engine.LockWalletSet(ctx, tx, winner.PlayerID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.engine.PostEntry(ctx, tx, domain.PostEntryParams{
		WalletID:      set.Real.ID,
		Type:          domain.EntryJackpotWin,
		Amount:        event.PoolAmount,
		ReferenceType: domain.RefJackpotEvent,
		ReferenceID:   event.ID.String(),
	}, domain.EventJackpotDrawn); err != nil {
		return nil, err
	}

	if err := s.events.MarkDrawn(ctx, tx, eventID, winner.PlayerID); err != nil {
		return nil, err
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewJackpotEvent(domain.EventJackpotDrawn, event.ID, winner.PlayerID, event.PoolAmount)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("jackpot drawn",
		"event_id", eventID,
		"winner_player_id", winner.PlayerID,
		"pool", event.PoolAmount)

	event.Status = domain.JackpotDrawn
	event.WinnerPlayerID = &winner.PlayerID
	return event, nil
}
