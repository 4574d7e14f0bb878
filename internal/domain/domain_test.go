package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("message includes code", func(t *testing.T) {
		err := ErrValidation("amount must be positive")
		assert.Equal(t, "VALIDATION_ERROR: amount must be positive", err.Error())
		assert.Equal(t, 400, err.Status)
	})

	t.Run("wrapped cause survives errors.As", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := ErrInternal("database unavailable", cause)
		assert.ErrorIs(t, err, cause)

		var appErr *AppError
		require.ErrorAs(t, error(err), &appErr)
		assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
	})

	t.Run("integrity error hides detail from callers", func(t *testing.T) {
		err := ErrAccountIntegrity("player 42 has no REAL wallet")
		assert.Equal(t, "account integrity error", err.Message)
		assert.Contains(t, err.Error(), "no REAL wallet")
		assert.Equal(t, 500, err.Status)
	})

	t.Run("not found names the entity", func(t *testing.T) {
		err := ErrNotFound("session", "abc")
		assert.Equal(t, 404, err.Status)
		assert.Contains(t, err.Message, "session abc")
	})
}

func TestWalletCanCover(t *testing.T) {
	w := &Wallet{Balance: 10_00}
	assert.True(t, w.CanCover(10_00))
	assert.True(t, w.CanCover(5_00))
	assert.False(t, w.CanCover(10_01))

	var missing *Wallet
	assert.False(t, missing.CanCover(1))
}

func TestWalletSetByType(t *testing.T) {
	real := &Wallet{Type: WalletReal}
	set := WalletSet{Real: real}

	assert.Same(t, real, set.ByType(WalletReal))
	assert.Nil(t, set.ByType(WalletBonus))
	assert.Nil(t, set.ByType(WalletType("CRYPTO")))
}

func TestWalletTypeValid(t *testing.T) {
	assert.True(t, WalletReal.Valid())
	assert.True(t, WalletBonus.Valid())
	assert.False(t, WalletType("").Valid())
	assert.False(t, WalletType("real").Valid())
}

func TestGameSessionLifecycle(t *testing.T) {
	now := time.Now()
	ttl := 2 * time.Hour

	t.Run("open session within ttl", func(t *testing.T) {
		s := &GameSession{StartedAt: now.Add(-time.Hour)}
		assert.True(t, s.Open())
		assert.False(t, s.Expired(now, ttl))
	})

	t.Run("open session past ttl", func(t *testing.T) {
		s := &GameSession{StartedAt: now.Add(-3 * time.Hour)}
		assert.True(t, s.Open())
		assert.True(t, s.Expired(now, ttl))
	})

	t.Run("closed session never expires", func(t *testing.T) {
		ended := now.Add(-time.Hour)
		s := &GameSession{StartedAt: now.Add(-5 * time.Hour), EndedAt: &ended}
		assert.False(t, s.Open())
		assert.False(t, s.Expired(now, ttl))
	})

	t.Run("nil session is not open", func(t *testing.T) {
		var s *GameSession
		assert.False(t, s.Open())
	})
}

func TestPlatformFee(t *testing.T) {
	g := &TenantGame{FeeBps: 100} // 1%
	assert.Equal(t, int64(10), g.PlatformFee(10_00))
	assert.Equal(t, int64(0), g.PlatformFee(99)) // truncates below one minor unit

	g.FeeBps = 250
	assert.Equal(t, int64(25), g.PlatformFee(10_00))
}

func TestPostEntryParamsRef(t *testing.T) {
	t.Run("full reference", func(t *testing.T) {
		p := PostEntryParams{ReferenceType: RefBet, ReferenceID: "bet-1"}
		rt, rid := p.Ref()
		require.NotNil(t, rt)
		require.NotNil(t, rid)
		assert.Equal(t, RefBet, *rt)
		assert.Equal(t, "bet-1", *rid)
	})

	t.Run("no reference", func(t *testing.T) {
		rt, rid := PostEntryParams{}.Ref()
		assert.Nil(t, rt)
		assert.Nil(t, rid)
	})

	t.Run("type without id", func(t *testing.T) {
		rt, rid := PostEntryParams{ReferenceType: RefDeposit}.Ref()
		require.NotNil(t, rt)
		assert.Nil(t, rid)
	})
}

func TestCampaignWindow(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)

	t.Run("bounded window", func(t *testing.T) {
		c := &BonusCampaign{StartsAt: start, EndsAt: &end}
		assert.True(t, c.WindowContains(start))
		assert.True(t, c.WindowContains(end))
		assert.True(t, c.WindowContains(start.AddDate(0, 0, 15)))
		assert.False(t, c.WindowContains(start.Add(-time.Second)))
		assert.False(t, c.WindowContains(end.Add(time.Second)))
		assert.Equal(t, end, c.WindowEnd(time.Now()))
	})

	t.Run("open ended window", func(t *testing.T) {
		c := &BonusCampaign{StartsAt: start}
		now := time.Now()
		assert.True(t, c.WindowContains(now))
		assert.Equal(t, now, c.WindowEnd(now))
	})
}

func TestPlayerBonusUnlockReached(t *testing.T) {
	pb := &PlayerBonus{WagerTarget: 500_00, Wagered: 499_99}
	assert.False(t, pb.UnlockReached())

	pb.Wagered = 500_00
	assert.True(t, pb.UnlockReached())
}

func TestValidators(t *testing.T) {
	t.Run("currency", func(t *testing.T) {
		assert.NoError(t, ValidateCurrency("USD"))
		assert.NoError(t, ValidateCurrency("EUR"))
		assert.Error(t, ValidateCurrency("usd"))
		assert.Error(t, ValidateCurrency("US"))
		assert.Error(t, ValidateCurrency("DOLLARS"))
	})

	t.Run("positive amount", func(t *testing.T) {
		assert.NoError(t, ValidatePositiveAmount(1))
		assert.Error(t, ValidatePositiveAmount(0))
		assert.Error(t, ValidatePositiveAmount(-5))
	})

	t.Run("bet bounds", func(t *testing.T) {
		g := &TenantGame{MinBet: 1_00, MaxBet: 100_00}
		assert.NoError(t, ValidateBetBounds(g, 1_00))
		assert.NoError(t, ValidateBetBounds(g, 100_00))
		assert.Error(t, ValidateBetBounds(g, 99))
		assert.Error(t, ValidateBetBounds(g, 100_01))

		uncapped := &TenantGame{MinBet: 1_00}
		assert.NoError(t, ValidateBetBounds(uncapped, 1_000_000_00))
	})
}
