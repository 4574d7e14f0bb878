package handler

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playhall/platform/internal/infra"
)

// HealthHandler reports database reachability. Wallet state lives entirely in
// Postgres, so an unreachable database means no wager can settle.
func HealthHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := infra.HealthCheck(r.Context(), pool); err != nil {
			RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
