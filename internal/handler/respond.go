package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/playhall/platform/internal/auth"
	"github.com/playhall/platform/internal/domain"
)

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError for status codes.
func RespondError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*domain.AppError); ok {
		RespondJSON(w, appErr.Status, map[string]string{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    "INTERNAL_ERROR",
		"message": "internal server error",
	})
}

// DecodeJSON reads and decodes a JSON request body into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// identity is the authenticated (tenant, player) pair every player route
// operates on.
type identity struct {
	TenantID uuid.UUID
	PlayerID uuid.UUID
}

func identityFromRequest(r *http.Request) (identity, error) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return identity{}, domain.ErrUnauthorized("no auth context")
	}
	playerID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return identity{}, domain.ErrUnauthorized("invalid subject")
	}
	tenantID, err := claims.Tenant()
	if err != nil {
		return identity{}, domain.ErrUnauthorized("invalid tenant claim")
	}
	return identity{TenantID: tenantID, PlayerID: playerID}, nil
}

func tenantFromRequest(r *http.Request) (uuid.UUID, error) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return uuid.Nil, domain.ErrUnauthorized("no auth context")
	}
	return claims.Tenant()
}
