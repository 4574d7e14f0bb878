package game

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"testing"

	"github.com/playhall/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForType(t *testing.T) {
	assert.IsType(t, SlotMachine{}, ForType(domain.GameSlot))
	assert.IsType(t, DiceRoll{}, ForType(domain.GameDice))
	assert.IsType(t, WheelOfFortune{}, ForType(domain.GameWheel))
	assert.IsType(t, CoinFlip{}, ForType(domain.GameCoin))
	assert.IsType(t, HighLow{}, ForType(domain.GameHighLow))
	assert.IsType(t, SlotMachine{}, ForType(domain.GameType("UNKNOWN")))
}

func TestSlotMultipliersStayOnPaytable(t *testing.T) {
	valid := map[float64]bool{0: true, 1.5: true, 10: true, 15: true, 20: true, 50: true}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 10_000; i++ {
		res, err := SlotMachine{}.Play(rng, "")
		require.NoError(t, err)
		assert.True(t, valid[res.Multiplier], "unexpected multiplier %v", res.Multiplier)

		var disp struct {
			Symbols []string `json:"symbols"`
		}
		require.NoError(t, json.Unmarshal(res.Display, &disp))
		require.Len(t, disp.Symbols, 3)
	}
}

func TestSlotSameSeedSameOutcome(t *testing.T) {
	a, err := SlotMachine{}.Play(rand.New(rand.NewSource(7)), "")
	require.NoError(t, err)
	b, err := SlotMachine{}.Play(rand.New(rand.NewSource(7)), "")
	require.NoError(t, err)
	assert.Equal(t, a.Multiplier, b.Multiplier)
	assert.JSONEq(t, string(a.Display), string(b.Display))
}

func TestDiceExactMatchPaysFive(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		// A twin generator predicts the roll the variant will see.
		roll := rand.New(rand.NewSource(seed)).Intn(6) + 1

		res, err := DiceRoll{}.Play(rand.New(rand.NewSource(seed)), strconv.Itoa(roll))
		require.NoError(t, err)
		assert.Equal(t, 5.0, res.Multiplier, "seed %d roll %d", seed, roll)

		miss := roll%6 + 1
		res, err = DiceRoll{}.Play(rand.New(rand.NewSource(seed)), strconv.Itoa(miss))
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.Multiplier)
	}
}

func TestDiceRejectsBadPrediction(t *testing.T) {
	for _, bad := range []string{"", "0", "7", "abc", "-1"} {
		_, err := DiceRoll{}.Play(rand.New(rand.NewSource(1)), bad)
		assert.Error(t, err, "prediction %q", bad)
	}
}

func TestWheelExactMatchPaysFifteen(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		segment := rand.New(rand.NewSource(seed)).Intn(20) + 1

		res, err := WheelOfFortune{}.Play(rand.New(rand.NewSource(seed)), strconv.Itoa(segment))
		require.NoError(t, err)
		assert.Equal(t, 15.0, res.Multiplier)

		miss := segment%20 + 1
		res, err = WheelOfFortune{}.Play(rand.New(rand.NewSource(seed)), strconv.Itoa(miss))
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.Multiplier)
	}
}

func TestWheelRejectsBadPrediction(t *testing.T) {
	for _, bad := range []string{"", "0", "21", "wheel"} {
		_, err := WheelOfFortune{}.Play(rand.New(rand.NewSource(1)), bad)
		assert.Error(t, err, "prediction %q", bad)
	}
}

func TestCoinFlipPaysNearEvenMoney(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		flip := "HEADS"
		if rand.New(rand.NewSource(seed)).Intn(2) == 1 {
			flip = "TAILS"
		}
		other := "TAILS"
		if flip == "TAILS" {
			other = "HEADS"
		}

		res, err := CoinFlip{}.Play(rand.New(rand.NewSource(seed)), flip)
		require.NoError(t, err)
		assert.Equal(t, 1.9, res.Multiplier)

		res, err = CoinFlip{}.Play(rand.New(rand.NewSource(seed)), other)
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.Multiplier)
	}
}

func TestCoinFlipAcceptsLowercase(t *testing.T) {
	res, err := CoinFlip{}.Play(rand.New(rand.NewSource(3)), " heads ")
	require.NoError(t, err)
	assert.Contains(t, []float64{0, 1.9}, res.Multiplier)

	_, err = CoinFlip{}.Play(rand.New(rand.NewSource(3)), "EDGE")
	assert.Error(t, err)
}

func TestHighLowSevenAlwaysLoses(t *testing.T) {
	sevens := 0
	for seed := int64(0); seed < 500; seed++ {
		card := rand.New(rand.NewSource(seed)).Intn(13) + 1

		high, err := HighLow{}.Play(rand.New(rand.NewSource(seed)), "HIGH")
		require.NoError(t, err)
		low, err := HighLow{}.Play(rand.New(rand.NewSource(seed)), "LOW")
		require.NoError(t, err)

		switch {
		case card == 7:
			sevens++
			assert.Equal(t, 0.0, high.Multiplier, "seed %d", seed)
			assert.Equal(t, 0.0, low.Multiplier, "seed %d", seed)
		case card > 7:
			assert.Equal(t, 1.9, high.Multiplier)
			assert.Equal(t, 0.0, low.Multiplier)
		default:
			assert.Equal(t, 0.0, high.Multiplier)
			assert.Equal(t, 1.9, low.Multiplier)
		}
	}
	assert.Greater(t, sevens, 0, "expected at least one house card in 500 draws")
}

func TestHighLowRejectsBadPrediction(t *testing.T) {
	_, err := HighLow{}.Play(rand.New(rand.NewSource(1)), "SEVEN")
	assert.Error(t, err)
}
