package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/ledger"
)

// WalletHandler handles wallet balance, movement, and history endpoints.
type WalletHandler struct {
	svc *ledger.Service
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(svc *ledger.Service) *WalletHandler {
	return &WalletHandler{svc: svc}
}

type balanceResponse struct {
	Real     int64  `json:"real_balance"`
	Bonus    int64  `json:"bonus_balance"`
	Currency string `json:"currency"`
}

// GetBalance handles GET /wallet/balance.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, err := identityFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	set, err := h.svc.Balances(r.Context(), id.PlayerID)
	if err != nil {
		RespondError(w, err)
		return
	}

	resp := balanceResponse{Real: set.Real.Balance, Currency: set.Real.Currency}
	if set.Bonus != nil {
		resp.Bonus = set.Bonus.Balance
	}
	RespondJSON(w, http.StatusOK, resp)
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

// Deposit handles POST /wallet/deposit.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.svc.Deposit)
}

// Withdraw handles POST /wallet/withdraw.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.svc.Withdraw)
}

type moveOp func(ctx context.Context, playerID uuid.UUID, amount int64) (*domain.LedgerEntry, *domain.Wallet, error)

func (h *WalletHandler) move(w http.ResponseWriter, r *http.Request, op moveOp) {
	id, err := identityFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req amountRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	entry, wallet, err := op(r.Context(), id.PlayerID, req.Amount)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"entry":  entry,
		"wallet": wallet,
	})
}

// GetHistory handles GET /wallet/history.
func (h *WalletHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := identityFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	entries, err := h.svc.History(r.Context(), id.PlayerID, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
