package domain

import (
	"fmt"
	"regexp"
)

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateCurrency checks if a currency code is ISO 4217 shaped.
func ValidateCurrency(currency string) error {
	if !currencyRegex.MatchString(currency) {
		return fmt.Errorf("invalid currency code: %s", currency)
	}
	return nil
}

// ValidatePositiveAmount checks that an amount is positive (minor units).
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidateBetBounds checks a wager against the game's configured bounds.
func ValidateBetBounds(game *TenantGame, amount int64) error {
	if amount < game.MinBet {
		return fmt.Errorf("minimum bet is %d", game.MinBet)
	}
	if game.MaxBet > 0 && amount > game.MaxBet {
		return fmt.Errorf("maximum bet for this game is %d", game.MaxBet)
	}
	return nil
}

// GuardResult is the outcome of a pre-admission guard check.
type GuardResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Guard   string `json:"guard,omitempty"`
}
