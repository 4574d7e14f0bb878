package game

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/playhall/platform/internal/domain"
)

// DiceRoll: predict the exact face of a d6. A match pays ×5.
type DiceRoll struct{}

func (DiceRoll) Play(rng *rand.Rand, prediction string) (Result, error) {
	guess, err := strconv.Atoi(strings.TrimSpace(prediction))
	if err != nil || guess < 1 || guess > 6 {
		return Result{}, domain.ErrValidation("dice prediction must be a number from 1 to 6")
	}

	roll := rng.Intn(6) + 1
	var multiplier float64
	if guess == roll {
		multiplier = 5.0
	}
	return Result{
		Multiplier: multiplier,
		Display:    display(map[string]int{"roll": roll}),
	}, nil
}

// WheelOfFortune: predict the exact segment of a 20-segment wheel. ×15.
type WheelOfFortune struct{}

func (WheelOfFortune) Play(rng *rand.Rand, prediction string) (Result, error) {
	guess, err := strconv.Atoi(strings.TrimSpace(prediction))
	if err != nil || guess < 1 || guess > 20 {
		return Result{}, domain.ErrValidation("wheel prediction must be a number from 1 to 20")
	}

	segment := rng.Intn(20) + 1
	var multiplier float64
	if guess == segment {
		multiplier = 15.0
	}
	return Result{
		Multiplier: multiplier,
		Display:    display(map[string]int{"segment": segment}),
	}, nil
}

// CoinFlip: HEADS or TAILS, near-even money at ×1.9.
type CoinFlip struct{}

func (CoinFlip) Play(rng *rand.Rand, prediction string) (Result, error) {
	guess := strings.ToUpper(strings.TrimSpace(prediction))
	if guess != "HEADS" && guess != "TAILS" {
		return Result{}, domain.ErrValidation(`coin prediction must be "HEADS" or "TAILS"`)
	}

	flip := "HEADS"
	if rng.Intn(2) == 1 {
		flip = "TAILS"
	}
	var multiplier float64
	if guess == flip {
		multiplier = 1.9
	}
	return Result{
		Multiplier: multiplier,
		Display:    display(map[string]string{"flip": flip}),
	}, nil
}

// HighLow: cards 1-6 are LOW, 8-13 are HIGH, 7 always loses. ×1.9.
type HighLow struct{}

func (HighLow) Play(rng *rand.Rand, prediction string) (Result, error) {
	guess := strings.ToUpper(strings.TrimSpace(prediction))
	if guess != "HIGH" && guess != "LOW" {
		return Result{}, domain.ErrValidation(`high-low prediction must be "HIGH" or "LOW"`)
	}

	card := rng.Intn(13) + 1
	var multiplier float64
	if (guess == "LOW" && card < 7) || (guess == "HIGH" && card > 7) {
		multiplier = 1.9
	}
	return Result{
		Multiplier: multiplier,
		Display:    display(map[string]int{"card": card}),
	}, nil
}
