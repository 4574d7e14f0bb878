// Package bonus implements promotional progression: wagering toward bonus
// unlock and threshold campaign grants. It runs after a settlement commits
// and never vetoes one; every failure here is logged and swallowed so a
// promotional defect cannot take the wager path down.
package bonus

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/infra"
	"github.com/playhall/platform/internal/ledger"
	"github.com/playhall/platform/internal/repository"
)

// Progression advances bonus state in response to settled wagers.
type Progression struct {
	pool    repository.DB
	engine  *ledger.Engine
	grants  repository.BonusRepository
	bets    repository.BetRepository
	entries repository.LedgerRepository
	outbox  repository.OutboxRepository
	logger  *slog.Logger
}

// NewProgression creates the progression engine.
func NewProgression(
	pool repository.DB,
	engine *ledger.Engine,
	grants repository.BonusRepository,
	bets repository.BetRepository,
	entries repository.LedgerRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *Progression {
	return &Progression{
		pool:    pool,
		engine:  engine,
		grants:  grants,
		bets:    bets,
		entries: entries,
		outbox:  outbox,
		logger:  logger,
	}
}

// OnWagerSettled advances the player's active grant and evaluates threshold
// campaigns. Each step runs in its own transaction so one campaign's failure
// cannot poison another's grant.
func (p *Progression) OnWagerSettled(ctx context.Context, player *domain.Player, bet *domain.Bet) {
	if err := p.advanceGrant(ctx, player, bet); err != nil {
		p.logger.Error("bonus progression failed",
			"player_id", player.ID,
			"bet_id", bet.ID,
			"error", err)
	}
	p.evaluateThresholdCampaigns(ctx, player)
}

// advanceGrant adds the wager to the player's ACTIVE grant and, once the
// target is reached, converts the entire BONUS balance to REAL. Only
// BONUS-funded wagers count toward the unlock target.
func (p *Progression) advanceGrant(ctx context.Context, player *domain.Player, bet *domain.Bet) error {
	if bet.WalletType != domain.WalletBonus {
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Wallets before the grant row, the same order settlement and campaign
	// grants use, so concurrent progressions for one player queue instead
	// of deadlocking.
	set, err := p.engine.LockWalletSet(ctx, tx, player.ID)
	if err != nil {
		return err
	}

	grant, err := p.grants.FindActiveGrantForUpdate(ctx, tx, player.ID)
	if err != nil {
		return err
	}
	if grant == nil {
		return nil
	}

	grant, err = p.grants.AddWagered(ctx, tx, grant.ID, bet.Amount)
	if err != nil {
		return err
	}
	if !grant.UnlockReached() {
		return tx.Commit(ctx)
	}

	if err := p.unlock(ctx, tx, set, player, grant); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// unlock transfers the full BONUS balance to REAL and completes the grant.
// Both ledger entries reference the grant, so the transfer nets to zero
// across the pair and each wallet stays the sum of its own entries.
func (p *Progression) unlock(ctx context.Context, tx pgx.Tx, set domain.WalletSet, player *domain.Player, grant *domain.PlayerBonus) error {
	if set.Bonus == nil {
		return domain.ErrAccountIntegrity("active grant without BONUS wallet")
	}

	transfer := set.Bonus.Balance
	if transfer > 0 {
		if _, _, err := p.engine.PostEntry(ctx, tx, domain.PostEntryParams{
			WalletID:      set.Bonus.ID,
			Type:          domain.EntryBonusUnlock,
			Amount:        -transfer,
			ReferenceType: domain.RefPlayerBonus,
			ReferenceID:   grant.ID.String(),
		}, domain.EventBonusUnlocked); err != nil {
			return err
		}
		if _, _, err := p.engine.PostEntry(ctx, tx, domain.PostEntryParams{
			WalletID:      set.Real.ID,
			Type:          domain.EntryBonusUnlock,
			Amount:        transfer,
			ReferenceType: domain.RefPlayerBonus,
			ReferenceID:   grant.ID.String(),
		}, domain.EventBonusUnlocked); err != nil {
			return err
		}
	}

	if err := p.grants.Complete(ctx, tx, grant.ID, time.Now()); err != nil {
		return err
	}

	infra.BonusUnlocks.Inc()
	p.logger.Info("bonus unlocked",
		"player_id", player.ID,
		"grant_id", grant.ID,
		"transferred", transfer)
	return nil
}

// evaluateThresholdCampaigns grants every BET_THRESHOLD campaign whose
// target the player's window wagering has reached. One transaction per
// campaign; a failed grant is logged and the rest still run.
func (p *Progression) evaluateThresholdCampaigns(ctx context.Context, player *domain.Player) {
	campaigns, err := p.grants.ActiveThresholdCampaigns(ctx, p.pool, player.TenantID, time.Now())
	if err != nil {
		p.logger.Error("load threshold campaigns", "tenant_id", player.TenantID, "error", err)
		return
	}

	for _, c := range campaigns {
		granted, err := p.grantIfEligible(ctx, player, c)
		if err != nil {
			p.logger.Error("threshold grant failed",
				"player_id", player.ID,
				"campaign_id", c.ID,
				"error", err)
			continue
		}
		if granted {
			infra.BonusGrants.Inc()
			p.logger.Info("threshold bonus granted",
				"player_id", player.ID,
				"campaign_id", c.ID,
				"amount", c.Amount)
		}
	}
}

// grantIfEligible awards one campaign at most once per player. The ledger
// reference (wallet, campaign) is the idempotency key; the partial unique
// index on ACTIVE grants keeps one unlock track per player.
func (p *Progression) grantIfEligible(ctx context.Context, player *domain.Player, c domain.BonusCampaign) (bool, error) {
	now := time.Now()
	wagered, err := p.bets.SumWageredBetween(ctx, p.pool, player.ID, c.StartsAt, c.WindowEnd(now))
	if err != nil {
		return false, err
	}
	if wagered < c.WagerTarget {
		return false, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	set, err := p.engine.LockWalletSet(ctx, tx, player.ID)
	if err != nil {
		return false, err
	}
	wallet := set.Bonus
	if wallet == nil {
		wallet, err = p.engine.EnsureBonusWallet(ctx, tx, player.ID, set.Real.Currency)
		if err != nil {
			return false, err
		}
	}

	already, err := p.entries.HasCampaignCredit(ctx, tx, wallet.ID, c.ID)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}

	target := int64(float64(c.Amount) * c.WageringMultiplier)
	if _, err := p.grants.InsertGrant(ctx, tx, &domain.PlayerBonus{
		PlayerID:      player.ID,
		CampaignID:    c.ID,
		InitialAmount: c.Amount,
		WagerTarget:   target,
		AwardedAt:     now,
	}); err != nil {
		// An existing ACTIVE grant blocks a new unlock track; the credit
		// rolls back with it and the campaign is retried on a later wager.
		return false, err
	}

	if _, _, err := p.engine.PostEntry(ctx, tx, domain.PostEntryParams{
		WalletID:      wallet.ID,
		Type:          domain.EntryBonusCredit,
		Amount:        c.Amount,
		ReferenceType: domain.RefCampaign,
		ReferenceID:   c.ID.String(),
	}, domain.EventBonusGranted); err != nil {
		return false, err
	}

	if err := p.outbox.Insert(ctx, tx, domain.NewBonusEvent(domain.EventBonusGranted, player.ID, c.ID, c.Amount)); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
