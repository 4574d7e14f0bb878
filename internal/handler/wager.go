package handler

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/guard"
	"github.com/playhall/platform/internal/repository"
	"github.com/playhall/platform/internal/settlement"
)

// WagerHandler exposes the wager and session endpoints.
type WagerHandler struct {
	svc      *settlement.Service
	sessions repository.SessionRepository
	db       repository.DBTX
	limiter  *guard.RateLimiter
}

// NewWagerHandler creates a WagerHandler.
func NewWagerHandler(svc *settlement.Service, sessions repository.SessionRepository, db repository.DBTX, limiter *guard.RateLimiter) *WagerHandler {
	return &WagerHandler{svc: svc, sessions: sessions, db: db, limiter: limiter}
}

type wagerRequest struct {
	GameID     string `json:"game_id"`
	Amount     int64  `json:"amount"`
	Prediction string `json:"prediction,omitempty"`
	WalletType string `json:"wallet_type,omitempty"`
}

// PlaceWager handles POST /wagers.
func (h *WagerHandler) PlaceWager(w http.ResponseWriter, r *http.Request) {
	id, err := identityFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	if res := h.limiter.Check(r.Context(), id.PlayerID.String()); !res.Allowed {
		RespondError(w, &domain.AppError{Code: "RATE_LIMITED", Message: res.Reason, Status: http.StatusTooManyRequests})
		return
	}

	var req wagerRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	gameID, err := uuid.Parse(req.GameID)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid game_id"))
		return
	}

	result, err := h.svc.PlaceWager(r.Context(), settlement.WagerInput{
		TenantID:   id.TenantID,
		PlayerID:   id.PlayerID,
		GameID:     gameID,
		Amount:     req.Amount,
		Prediction: req.Prediction,
		WalletType: domain.WalletType(req.WalletType),
		IPAddress:  clientIP(r),
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

// EndSession handles POST /sessions/{sessionID}/end: an explicit close ahead
// of the inactivity expiry.
func (h *WagerHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	id, err := identityFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid session id"))
		return
	}

	// Scope the close to the caller's own sessions.
	var owner uuid.UUID
	err = h.db.QueryRow(r.Context(), `SELECT player_id FROM game_sessions WHERE id = $1`, sessionID).Scan(&owner)
	if err != nil || owner != id.PlayerID {
		RespondError(w, domain.ErrNotFound("session", sessionID.String()))
		return
	}

	if err := h.sessions.Close(r.Context(), h.db, sessionID, time.Now()); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// EndAllSessions handles POST /sessions/end: the logout path closes every
// open session the player holds across games.
func (h *WagerHandler) EndAllSessions(w http.ResponseWriter, r *http.Request) {
	id, err := identityFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.sessions.CloseOpenForPlayer(r.Context(), h.db, id.PlayerID, time.Now()); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
