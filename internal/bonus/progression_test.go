package bonus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/ledger"
	"github.com/playhall/platform/internal/repository/repositorytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressionFixture struct {
	prog    *Progression
	db      *repositorytest.DB
	wallets *repositorytest.Wallets
	entries *repositorytest.Ledger
	outbox  *repositorytest.Outbox
	bets    *repositorytest.Bets
	grants  *repositorytest.Grants
	calls   *repositorytest.Recorder
	player  *domain.Player
}

func newProgressionFixture(t *testing.T, realBalance int64, bonus *domain.Wallet) *progressionFixture {
	t.Helper()

	player := &domain.Player{ID: uuid.New(), TenantID: uuid.New(), Status: domain.PlayerActive}
	calls := &repositorytest.Recorder{}

	f := &progressionFixture{
		db: &repositorytest.DB{},
		wallets: &repositorytest.Wallets{
			Set: domain.WalletSet{
				Real:  &domain.Wallet{ID: uuid.New(), PlayerID: player.ID, Type: domain.WalletReal, Balance: realBalance, Currency: "USD"},
				Bonus: bonus,
			},
			Calls: calls,
		},
		entries: &repositorytest.Ledger{},
		outbox:  &repositorytest.Outbox{},
		bets:    &repositorytest.Bets{},
		grants:  &repositorytest.Grants{Calls: calls},
		calls:   calls,
		player:  player,
	}

	engine := ledger.NewEngine(f.wallets, f.entries, f.outbox)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.prog = NewProgression(f.db, engine, f.grants, f.bets, f.entries, f.outbox, logger)
	return f
}

func bonusWallet(playerID uuid.UUID, balance int64) *domain.Wallet {
	return &domain.Wallet{ID: uuid.New(), PlayerID: playerID, Type: domain.WalletBonus, Balance: balance, Currency: "USD"}
}

func bonusBet(playerID uuid.UUID, walletType domain.WalletType, amount int64) *domain.Bet {
	return &domain.Bet{ID: uuid.New(), PlayerID: playerID, WalletType: walletType, Amount: amount}
}

func TestAdvanceGrant(t *testing.T) {
	ctx := context.Background()

	t.Run("unlock converts the entire bonus balance", func(t *testing.T) {
		player := &domain.Player{ID: uuid.New(), TenantID: uuid.New()}
		// The bonus wallet grew past the granted 50.00 through winnings;
		// the unlock still moves everything it holds.
		f := newProgressionFixture(t, 20_00, nil)
		f.player = player
		f.wallets.Set.Real.PlayerID = player.ID
		f.wallets.Set.Bonus = bonusWallet(player.ID, 75_00)
		f.grants.Active = &domain.PlayerBonus{
			ID:            uuid.New(),
			PlayerID:      player.ID,
			Status:        domain.BonusActive,
			InitialAmount: 50_00,
			WagerTarget:   100_00,
			Wagered:       90_00,
		}
		grantID := f.grants.Active.ID

		f.prog.OnWagerSettled(ctx, player, bonusBet(player.ID, domain.WalletBonus, 10_00))

		assert.Equal(t, int64(0), f.wallets.Set.Bonus.Balance)
		assert.Equal(t, int64(95_00), f.wallets.Set.Real.Balance)

		// A zero-sum pair of unlock entries referencing the grant.
		require.Len(t, f.entries.Entries, 2)
		var sum int64
		for _, e := range f.entries.Entries {
			assert.Equal(t, domain.EntryBonusUnlock, e.Type)
			require.NotNil(t, e.ReferenceID)
			assert.Equal(t, grantID.String(), *e.ReferenceID)
			sum += e.Amount
		}
		assert.Equal(t, int64(0), sum)

		require.Len(t, f.grants.Completed, 1)
		assert.Equal(t, domain.BonusCompleted, f.grants.Completed[0].Status)
		assert.Nil(t, f.grants.Active)
		assert.Equal(t, 1, f.db.Committed())
	})

	t.Run("below target only advances the counter", func(t *testing.T) {
		player := &domain.Player{ID: uuid.New(), TenantID: uuid.New()}
		f := newProgressionFixture(t, 20_00, nil)
		f.wallets.Set.Bonus = bonusWallet(player.ID, 50_00)
		f.grants.Active = &domain.PlayerBonus{
			ID:          uuid.New(),
			PlayerID:    player.ID,
			Status:      domain.BonusActive,
			WagerTarget: 100_00,
			Wagered:     10_00,
		}

		f.prog.OnWagerSettled(ctx, player, bonusBet(player.ID, domain.WalletBonus, 10_00))

		require.NotNil(t, f.grants.Active)
		assert.Equal(t, int64(20_00), f.grants.Active.Wagered)
		assert.Equal(t, int64(50_00), f.wallets.Set.Bonus.Balance)
		assert.Empty(t, f.entries.Entries)
		assert.Equal(t, 1, f.db.Committed())
	})

	t.Run("real funded wagers never advance the unlock", func(t *testing.T) {
		player := &domain.Player{ID: uuid.New(), TenantID: uuid.New()}
		f := newProgressionFixture(t, 20_00, nil)
		f.grants.Active = &domain.PlayerBonus{
			ID:          uuid.New(),
			PlayerID:    player.ID,
			Status:      domain.BonusActive,
			WagerTarget: 100_00,
			Wagered:     95_00,
		}

		f.prog.OnWagerSettled(ctx, player, bonusBet(player.ID, domain.WalletReal, 10_00))

		assert.Equal(t, int64(95_00), f.grants.Active.Wagered)
		assert.Empty(t, f.db.Txs)
		assert.Empty(t, f.calls.Names)
	})

	t.Run("wallet locks come before the grant row", func(t *testing.T) {
		player := &domain.Player{ID: uuid.New(), TenantID: uuid.New()}
		f := newProgressionFixture(t, 20_00, nil)
		f.wallets.Set.Bonus = bonusWallet(player.ID, 50_00)
		f.grants.Active = &domain.PlayerBonus{
			ID:          uuid.New(),
			PlayerID:    player.ID,
			Status:      domain.BonusActive,
			WagerTarget: 100_00,
		}

		f.prog.OnWagerSettled(ctx, player, bonusBet(player.ID, domain.WalletBonus, 10_00))

		require.GreaterOrEqual(t, len(f.calls.Names), 2)
		assert.Equal(t, "wallets.LockSet", f.calls.Names[0])
		assert.Equal(t, "grants.FindActiveGrantForUpdate", f.calls.Names[1])
	})

	t.Run("a failing grant read is swallowed", func(t *testing.T) {
		player := &domain.Player{ID: uuid.New(), TenantID: uuid.New()}
		f := newProgressionFixture(t, 20_00, nil)
		f.wallets.Set.Bonus = bonusWallet(player.ID, 50_00)
		f.grants.FindErr = errors.New("connection reset")

		f.prog.OnWagerSettled(ctx, player, bonusBet(player.ID, domain.WalletBonus, 10_00))

		assert.Empty(t, f.entries.Entries)
		require.Len(t, f.db.Txs, 1)
		assert.True(t, f.db.Txs[0].RolledBack)
	})
}

func TestThresholdCampaigns(t *testing.T) {
	ctx := context.Background()

	campaign := func(tenantID uuid.UUID) domain.BonusCampaign {
		return domain.BonusCampaign{
			ID:                 uuid.New(),
			TenantID:           tenantID,
			Name:               "High Roller Week",
			Type:               domain.CampaignBetThreshold,
			Amount:             25_00,
			WagerTarget:        100_00,
			WageringMultiplier: 10,
			StartsAt:           time.Now().Add(-24 * time.Hour),
			Active:             true,
		}
	}

	t.Run("reaching the target grants once", func(t *testing.T) {
		player := &domain.Player{ID: uuid.New(), TenantID: uuid.New()}
		f := newProgressionFixture(t, 20_00, nil)
		c := campaign(player.TenantID)
		f.grants.Campaigns = []domain.BonusCampaign{c}
		f.bets.Windowed = 150_00

		f.prog.OnWagerSettled(ctx, player, bonusBet(player.ID, domain.WalletReal, 10_00))

		require.NotNil(t, f.grants.Active)
		assert.Equal(t, int64(25_00), f.grants.Active.InitialAmount)
		assert.Equal(t, int64(250_00), f.grants.Active.WagerTarget)

		// The bonus wallet is provisioned on demand and credited.
		require.NotNil(t, f.wallets.Set.Bonus)
		assert.Equal(t, int64(25_00), f.wallets.Set.Bonus.Balance)

		require.Len(t, f.entries.Entries, 1)
		entry := f.entries.Entries[0]
		assert.Equal(t, domain.EntryBonusCredit, entry.Type)
		assert.Equal(t, int64(25_00), entry.Amount)
		require.NotNil(t, entry.ReferenceID)
		assert.Equal(t, c.ID.String(), *entry.ReferenceID)
	})

	t.Run("a campaign already credited is not granted again", func(t *testing.T) {
		player := &domain.Player{ID: uuid.New(), TenantID: uuid.New()}
		f := newProgressionFixture(t, 20_00, nil)
		c := campaign(player.TenantID)
		f.grants.Campaigns = []domain.BonusCampaign{c}
		f.bets.Windowed = 150_00

		f.prog.OnWagerSettled(ctx, player, bonusBet(player.ID, domain.WalletReal, 10_00))
		require.NotNil(t, f.grants.Active)

		// The grant later completes; the ledger credit survives as the
		// de-duplication key and blocks a second award.
		f.grants.Active = nil
		f.prog.OnWagerSettled(ctx, player, bonusBet(player.ID, domain.WalletReal, 10_00))

		assert.Nil(t, f.grants.Active)
		creditCount := 0
		for _, e := range f.entries.Entries {
			if e.Type == domain.EntryBonusCredit {
				creditCount++
			}
		}
		assert.Equal(t, 1, creditCount)
	})

	t.Run("below the target nothing happens", func(t *testing.T) {
		player := &domain.Player{ID: uuid.New(), TenantID: uuid.New()}
		f := newProgressionFixture(t, 20_00, nil)
		f.grants.Campaigns = []domain.BonusCampaign{campaign(player.TenantID)}
		f.bets.Windowed = 40_00

		f.prog.OnWagerSettled(ctx, player, bonusBet(player.ID, domain.WalletReal, 10_00))

		assert.Nil(t, f.grants.Active)
		assert.Empty(t, f.entries.Entries)
		assert.Empty(t, f.db.Txs)
	})
}
