package policy

import "github.com/playhall/platform/internal/domain"

// SelectFundingWallet picks which wallet funds a wager. An explicit
// preference must cover the amount or the selection fails; with no
// preference, BONUS is preferred when its balance covers the wager, then
// REAL. A missing REAL wallet is an account-integrity defect, never a
// recoverable condition.
func SelectFundingWallet(set domain.WalletSet, amount int64, pref domain.WalletType) (*domain.Wallet, error) {
	if set.Real == nil {
		return nil, domain.ErrAccountIntegrity("player has no REAL wallet")
	}

	if pref != "" {
		if !pref.Valid() {
			return nil, domain.ErrValidation("invalid wallet type: " + string(pref))
		}
		w := set.ByType(pref)
		if !w.CanCover(amount) {
			return nil, domain.ErrInsufficientFunds("insufficient " + string(pref) + " funds")
		}
		return w, nil
	}

	if set.Bonus.CanCover(amount) {
		return set.Bonus, nil
	}
	if set.Real.CanCover(amount) {
		return set.Real, nil
	}
	return nil, domain.ErrInsufficientFunds("insufficient funds")
}
