package settlement

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/game"
	"github.com/playhall/platform/internal/infra"
	"github.com/playhall/platform/internal/ledger"
	"github.com/playhall/platform/internal/policy"
	"github.com/playhall/platform/internal/repository"
)

// WagerInput is one settlement request.
type WagerInput struct {
	TenantID   uuid.UUID
	PlayerID   uuid.UUID
	GameID     uuid.UUID
	Amount     int64
	Prediction string
	// WalletType is the explicit funding preference; empty means automatic.
	WalletType domain.WalletType
	IPAddress  string
}

// WagerResult is the settled state returned to the caller. The wallet
// snapshot reflects the committed post-settlement balance.
type WagerResult struct {
	Bet       *domain.Bet        `json:"bet"`
	Outcome   *domain.BetOutcome `json:"outcome"`
	Round     *domain.GameRound  `json:"round"`
	SessionID uuid.UUID          `json:"session_id"`
	Display   interface{}        `json:"display"`
	Wallet    *domain.Wallet     `json:"wallet"`
}

// ProgressionHook runs after a settlement commits. Failures are isolated:
// the settled wager stands whatever the hook does.
type ProgressionHook interface {
	OnWagerSettled(ctx context.Context, player *domain.Player, bet *domain.Bet)
}

// Service orchestrates the atomic wager settlement: limit guard, wallet
// selection, session and round tracking, outcome generation, and the ledger
// write, all inside one database transaction.
type Service struct {
	pool     repository.DB
	engine   *ledger.Engine
	players  repository.PlayerRepository
	catalog  repository.CatalogRepository
	sessions repository.SessionRepository
	bets     repository.BetRepository

	progression ProgressionHook

	sessionTTL time.Duration
	retries    int
	loc        *time.Location
	logger     *slog.Logger

	// newRNG is swapped out by tests for deterministic outcomes.
	newRNG func() *rand.Rand
}

// NewService creates a settlement service.
func NewService(
	pool repository.DB,
	engine *ledger.Engine,
	players repository.PlayerRepository,
	catalog repository.CatalogRepository,
	sessions repository.SessionRepository,
	bets repository.BetRepository,
	sessionTTL time.Duration,
	retries int,
	loc *time.Location,
	logger *slog.Logger,
) *Service {
	if retries < 1 {
		retries = 1
	}
	return &Service{
		pool:       pool,
		engine:     engine,
		players:    players,
		catalog:    catalog,
		sessions:   sessions,
		bets:       bets,
		sessionTTL: sessionTTL,
		retries:    retries,
		loc:        loc,
		logger:     logger,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// SetProgression registers the post-settlement bonus hook.
func (s *Service) SetProgression(hook ProgressionHook) { s.progression = hook }

// PlaceWager runs the full settlement. Limit rejections and funding failures
// leave no trace besides a rejected event; a committed settlement always
// carries the bet, its outcome, the round, and exactly one ledger entry.
func (s *Service) PlaceWager(ctx context.Context, input WagerInput) (*WagerResult, error) {
	start := time.Now()
	defer func() { infra.SettlementDuration.Observe(time.Since(start).Seconds()) }()

	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if input.WalletType != "" && !input.WalletType.Valid() {
		return nil, domain.ErrValidation("invalid wallet type: " + string(input.WalletType))
	}

	player, tenantGame, limits, err := s.loadAdmission(ctx, input)
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	// Cheap rejection on an unlocked read before any transaction is opened.
	// The authoritative check repeats under the wallet lock; a failed read
	// here falls through to that one.
	if wagered, won, preErr := s.bets.DailyActivity(ctx, s.pool, input.PlayerID, s.dayStart(time.Now())); preErr == nil {
		verdict := policy.EvaluateBetLimits(limits, input.Amount, policy.DailyActivity{Wagered: wagered, Won: won})
		if !verdict.Allowed {
			err = domain.ErrLimitExceeded(verdict.Reason)
			s.countRejection(err)
			s.emitRejected(ctx, input, err)
			return nil, err
		}
	}

	variant := game.ForType(tenantGame.Type)
	rng := s.newRNG()

	var result *WagerResult
	for attempt := 1; ; attempt++ {
		result, err = s.settleOnce(ctx, input, player, tenantGame, limits, variant, rng)
		if err == nil {
			break
		}
		if repository.IsRetryable(err) && attempt < s.retries {
			s.logger.Warn("settlement retry",
				"player_id", input.PlayerID,
				"attempt", attempt,
				"error", err)
			continue
		}
		s.countRejection(err)
		s.emitRejected(ctx, input, err)
		return nil, err
	}

	infra.WagersSettled.WithLabelValues(string(result.Outcome.Result)).Inc()
	infra.AmountWagered.Add(float64(input.Amount))
	infra.AmountPaidOut.Add(float64(result.Outcome.Payout))

	if s.progression != nil {
		s.progression.OnWagerSettled(ctx, player, result.Bet)
	}
	return result, nil
}

// loadAdmission resolves the player, game, and limit configuration. These
// reads run outside the settlement transaction; the limit check is repeated
// under the wallet lock before money moves.
func (s *Service) loadAdmission(ctx context.Context, input WagerInput) (*domain.Player, *domain.TenantGame, policy.BetLimits, error) {
	var limits policy.BetLimits

	player, err := s.players.FindByID(ctx, s.pool, input.PlayerID)
	if err != nil {
		return nil, nil, limits, err
	}
	if player == nil || player.TenantID != input.TenantID {
		return nil, nil, limits, domain.ErrNotFound("player", input.PlayerID.String())
	}
	if player.Status != domain.PlayerActive {
		return nil, nil, limits, domain.ErrValidation("player account is suspended")
	}

	tenantGame, err := s.catalog.FindGame(ctx, s.pool, input.TenantID, input.GameID)
	if err != nil {
		return nil, nil, limits, err
	}
	if tenantGame == nil {
		return nil, nil, limits, domain.ErrNotFound("game", input.GameID.String())
	}
	if !tenantGame.Active {
		return nil, nil, limits, domain.ErrValidation("game is not active")
	}
	if err := domain.ValidateBetBounds(tenantGame, input.Amount); err != nil {
		return nil, nil, limits, domain.ErrValidation(err.Error())
	}

	tenant, err := s.players.FindTenant(ctx, s.pool, player.TenantID)
	if err != nil {
		return nil, nil, limits, err
	}
	if tenant == nil {
		return nil, nil, limits, domain.ErrNotFound("tenant", player.TenantID.String())
	}

	return player, tenantGame, policy.ResolveBetLimits(player, tenant), nil
}

// settleOnce is one attempt of the settlement transaction.
func (s *Service) settleOnce(
	ctx context.Context,
	input WagerInput,
	player *domain.Player,
	tenantGame *domain.TenantGame,
	limits policy.BetLimits,
	variant game.Game,
	rng *rand.Rand,
) (*WagerResult, error) {
	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	// Wallets first, session second. Every settlement acquires locks in
	// this order, so concurrent wagers on the same player queue instead of
	// deadlocking.
	set, err := s.engine.LockWalletSet(ctx, tx, input.PlayerID)
	if err != nil {
		return nil, err
	}

	// Limit check under the lock: the daily aggregates cannot move between
	// this read and the debit below.
	wagered, won, err := s.bets.DailyActivity(ctx, tx, input.PlayerID, s.dayStart(now))
	if err != nil {
		return nil, err
	}
	verdict := policy.EvaluateBetLimits(limits, input.Amount, policy.DailyActivity{Wagered: wagered, Won: won})
	if !verdict.Allowed {
		return nil, domain.ErrLimitExceeded(verdict.Reason)
	}

	funding, err := policy.SelectFundingWallet(set, input.Amount, input.WalletType)
	if err != nil {
		return nil, err
	}

	session, err := s.resolveSession(ctx, tx, input, now)
	if err != nil {
		return nil, err
	}

	roundNo, err := s.sessions.NextRoundNumber(ctx, tx, session.ID)
	if err != nil {
		return nil, err
	}
	round, err := s.sessions.InsertRound(ctx, tx, &domain.GameRound{
		ID:          uuid.New(),
		SessionID:   session.ID,
		RoundNumber: roundNo,
		StartedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	bet, err := s.bets.Insert(ctx, tx, &domain.Bet{
		TenantID:   input.TenantID,
		PlayerID:   input.PlayerID,
		RoundID:    round.ID,
		GameID:     input.GameID,
		WalletType: funding.Type,
		Amount:     input.Amount,
		FeeAmount:  tenantGame.PlatformFee(input.Amount),
		Currency:   funding.Currency,
	})
	if err != nil {
		return nil, err
	}

	played, err := variant.Play(rng, input.Prediction)
	if err != nil {
		return nil, err
	}
	payout := payoutAmount(input.Amount, played.Multiplier)

	outcome := &domain.BetOutcome{
		BetID:     bet.ID,
		Result:    domain.OutcomeLoss,
		Payout:    payout,
		SettledAt: now,
	}
	if payout > 0 {
		outcome.Result = domain.OutcomeWin
	}
	if err := s.bets.InsertOutcome(ctx, tx, outcome); err != nil {
		return nil, err
	}

	// One signed entry per settlement: payout minus wager. The wallet
	// balance stays the running sum of its entries either way.
	net := payout - input.Amount
	entryType := domain.EntryBetDebit
	if net >= 0 {
		entryType = domain.EntryWinCredit
	}
	_, wallet, err := s.engine.PostEntry(ctx, tx, domain.PostEntryParams{
		WalletID:      funding.ID,
		Type:          entryType,
		Amount:        net,
		ReferenceType: domain.RefBet,
		ReferenceID:   bet.ID.String(),
	}, domain.EventWagerSettled)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.CloseRound(ctx, tx, round.ID, time.Now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	var display interface{}
	_ = json.Unmarshal(played.Display, &display)

	return &WagerResult{
		Bet:       bet,
		Outcome:   outcome,
		Round:     round,
		SessionID: session.ID,
		Display:   display,
		Wallet:    wallet,
	}, nil
}

// resolveSession returns the open session for (player, game), rotating an
// expired one and creating a fresh session when none exists. Runs under the
// settlement transaction; the partial unique index arbitrates races.
func (s *Service) resolveSession(ctx context.Context, tx pgx.Tx, input WagerInput, now time.Time) (*domain.GameSession, error) {
	session, err := s.sessions.FindOpenForUpdate(ctx, tx, input.PlayerID, input.GameID)
	if err != nil {
		return nil, err
	}
	if session != nil && !session.Expired(now, s.sessionTTL) {
		return session, nil
	}
	if session != nil {
		if err := s.sessions.Close(ctx, tx, session.ID, now); err != nil {
			return nil, err
		}
		s.logger.Info("session rotated",
			"player_id", input.PlayerID,
			"game_id", input.GameID,
			"expired_session_id", session.ID)
	}
	return s.sessions.Create(ctx, tx, &domain.GameSession{
		ID:        uuid.New(),
		PlayerID:  input.PlayerID,
		GameID:    input.GameID,
		IPAddress: input.IPAddress,
		StartedAt: now,
	})
}

// payoutAmount converts a paytable multiplier to minor units, rounding to
// the nearest unit.
func payoutAmount(amount int64, multiplier float64) int64 {
	return int64(math.Round(float64(amount) * multiplier))
}

// dayStart is midnight of the current day in the platform time zone; the
// daily limit counters reset there.
func (s *Service) dayStart(now time.Time) time.Time {
	local := now.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

func (s *Service) countRejection(err error) {
	code := "INTERNAL_ERROR"
	if appErr, ok := err.(*domain.AppError); ok {
		code = appErr.Code
	}
	infra.WagersRejected.WithLabelValues(code).Inc()
}

// emitRejected records the rejection for downstream consumers. Best effort:
// the rejection response does not depend on it.
func (s *Service) emitRejected(ctx context.Context, input WagerInput, cause error) {
	appErr, ok := cause.(*domain.AppError)
	if !ok || appErr.Status >= 500 {
		return
	}
	draft := domain.NewWagerRejectedEvent(input.PlayerID, input.GameID, input.Amount, appErr.Code)
	if err := s.engine.StageEvent(ctx, s.pool, draft); err != nil {
		s.logger.Error("stage rejected event", "error", err)
	}
}
