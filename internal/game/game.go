// Package game implements the outcome generator: a closed set of chance-game
// variants, each mapping a player prediction to a payout multiplier and a
// result descriptor. No I/O and no shared state; randomness is injected so
// paytables stay unit-testable.
package game

import (
	"encoding/json"
	"math/rand"

	"github.com/playhall/platform/internal/domain"
)

// Result is the outcome of one independent random trial.
type Result struct {
	Multiplier float64         // ≥ 0; 0 means the wager is lost
	Display    json.RawMessage // opaque descriptor for client display
}

// Game computes an outcome for a prediction. Implementations are stateless.
type Game interface {
	Play(rng *rand.Rand, prediction string) (Result, error)
}

// ForType returns the variant for a game type. Unknown types fall back to
// the slot machine, the simplest variant (it ignores predictions).
func ForType(t domain.GameType) Game {
	switch t {
	case domain.GameDice:
		return DiceRoll{}
	case domain.GameWheel:
		return WheelOfFortune{}
	case domain.GameCoin:
		return CoinFlip{}
	case domain.GameHighLow:
		return HighLow{}
	default:
		return SlotMachine{}
	}
}

func display(v interface{}) json.RawMessage {
	out, _ := json.Marshal(v)
	return out
}
