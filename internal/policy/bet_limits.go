// Package policy holds the pure rule evaluations of the wager path: the
// responsible-gambling limit guard and the funding-wallet selector. Both are
// side-effect free; callers supply the state they evaluate against.
package policy

import (
	"fmt"

	"github.com/playhall/platform/internal/domain"
)

// BetLimits are the resolved ceilings for one player. Zero means unlimited.
type BetLimits struct {
	MaxSingleBet   int64 `json:"max_single_bet"`
	DailyBetLimit  int64 `json:"daily_bet_limit"`
	DailyLossLimit int64 `json:"daily_loss_limit"`
}

// ResolveBetLimits applies per-player overrides over tenant defaults.
// A zero override inherits; a zero default is unlimited.
func ResolveBetLimits(player *domain.Player, tenant *domain.Tenant) BetLimits {
	limits := BetLimits{
		MaxSingleBet:   tenant.MaxSingleBet,
		DailyBetLimit:  tenant.DailyBetLimit,
		DailyLossLimit: tenant.DailyLossLimit,
	}
	if player.MaxSingleBet > 0 {
		limits.MaxSingleBet = player.MaxSingleBet
	}
	if player.DailyBetLimit > 0 {
		limits.DailyBetLimit = player.DailyBetLimit
	}
	if player.DailyLossLimit > 0 {
		limits.DailyLossLimit = player.DailyLossLimit
	}
	return limits
}

// DailyActivity aggregates a player's wagers and payouts since the start of
// the current calendar day in the platform's reference time zone.
type DailyActivity struct {
	Wagered int64
	Won     int64
}

// NetLoss is today's wagered minus won; negative when the player is up.
func (a DailyActivity) NetLoss() int64 { return a.Wagered - a.Won }

// LimitEvaluation is the limit guard's verdict. On a daily-bet rejection,
// Remaining carries the allowance still available today.
type LimitEvaluation struct {
	Allowed       bool   `json:"allowed"`
	BreachedLimit string `json:"breached_limit,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Remaining     int64  `json:"remaining,omitempty"`
}

// EvaluateBetLimits checks a proposed wager against the resolved limits and
// the player's activity for the current day. Rejections are terminal; no
// state is created for a rejected wager.
func EvaluateBetLimits(limits BetLimits, amount int64, day DailyActivity) LimitEvaluation {
	if limits.MaxSingleBet > 0 && amount > limits.MaxSingleBet {
		return LimitEvaluation{
			BreachedLimit: "max_single_bet",
			Reason:        fmt.Sprintf("bet exceeds your max single bet limit of %d", limits.MaxSingleBet),
		}
	}

	if limits.DailyBetLimit > 0 && day.Wagered+amount > limits.DailyBetLimit {
		remaining := limits.DailyBetLimit - day.Wagered
		if remaining < 0 {
			remaining = 0
		}
		return LimitEvaluation{
			BreachedLimit: "daily_bet",
			Reason:        fmt.Sprintf("daily bet limit reached, remaining allowance: %d", remaining),
			Remaining:     remaining,
		}
	}

	// The wager's full amount counts as potential loss: a bet that could
	// push the player past the ceiling is refused up front.
	if limits.DailyLossLimit > 0 && day.NetLoss()+amount > limits.DailyLossLimit {
		return LimitEvaluation{
			BreachedLimit: "daily_loss",
			Reason:        "daily loss limit reached, please come back tomorrow",
		}
	}

	return LimitEvaluation{Allowed: true}
}
