package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/jackpot"
)

// JackpotHandler exposes jackpot entry (player) and draw (admin) endpoints.
type JackpotHandler struct {
	svc *jackpot.Service
}

// NewJackpotHandler creates a JackpotHandler.
func NewJackpotHandler(svc *jackpot.Service) *JackpotHandler {
	return &JackpotHandler{svc: svc}
}

type jackpotEnterRequest struct {
	WalletType string `json:"wallet_type,omitempty"`
}

// Enter handles POST /jackpots/{eventID}/enter.
func (h *JackpotHandler) Enter(w http.ResponseWriter, r *http.Request) {
	id, err := identityFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	var req jackpotEnterRequest
	_ = DecodeJSON(r, &req) // body is optional

	entry, err := h.svc.Enter(r.Context(), id.TenantID, id.PlayerID, eventID, domain.WalletType(req.WalletType))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, entry)
}

// Draw handles POST /admin/jackpots/{eventID}/draw.
func (h *JackpotHandler) Draw(w http.ResponseWriter, r *http.Request) {
	tenantID, err := tenantFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	event, err := h.svc.Draw(r.Context(), tenantID, eventID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, event)
}
