package game

import "math/rand"

// Reel symbols in descending frequency. SEVEN is the rarest.
var slotSymbols = []string{"CHERRY", "LEMON", "ORANGE", "GRAPE", "BELL", "DIAMOND", "SEVEN"}

var slotWeights = []int{30, 25, 20, 15, 7, 2, 1}

var slotWeightTotal = func() int {
	total := 0
	for _, w := range slotWeights {
		total += w
	}
	return total
}()

// SlotMachine spins three weighted reels. Predictions are ignored.
type SlotMachine struct{}

// Play samples three symbols and applies the paytable: triple SEVEN pays
// ×50, triple DIAMOND ×20, triple BELL ×15, any other triple ×10, an
// adjacent pair ×1.5, otherwise nothing.
func (SlotMachine) Play(rng *rand.Rand, _ string) (Result, error) {
	reels := [3]string{spinReel(rng), spinReel(rng), spinReel(rng)}

	var multiplier float64
	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		switch reels[0] {
		case "SEVEN":
			multiplier = 50.0
		case "DIAMOND":
			multiplier = 20.0
		case "BELL":
			multiplier = 15.0
		default:
			multiplier = 10.0
		}
	case reels[0] == reels[1] || reels[1] == reels[2]:
		multiplier = 1.5
	}

	return Result{
		Multiplier: multiplier,
		Display:    display(map[string]interface{}{"symbols": reels}),
	}, nil
}

func spinReel(rng *rand.Rand) string {
	n := rng.Intn(slotWeightTotal)
	for i, w := range slotWeights {
		if n < w {
			return slotSymbols[i]
		}
		n -= w
	}
	return slotSymbols[0]
}
