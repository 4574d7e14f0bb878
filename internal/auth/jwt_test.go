package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("test-secret-at-least-32-chars-long", time.Hour, 8*time.Hour)
}

func TestGenerateAndValidateToken(t *testing.T) {
	mgr := newTestManager()
	playerID := uuid.New()
	tenantID := uuid.New()

	t.Run("player token round trip", func(t *testing.T) {
		token, err := mgr.GenerateToken(RealmPlayer, playerID, tenantID, "")
		require.NoError(t, err)

		claims, err := mgr.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, RealmPlayer, claims.Realm)
		assert.Equal(t, playerID.String(), claims.Subject)

		parsed, err := claims.Tenant()
		require.NoError(t, err)
		assert.Equal(t, tenantID, parsed)
	})

	t.Run("admin token carries role", func(t *testing.T) {
		token, err := mgr.GenerateToken(RealmAdmin, uuid.New(), tenantID, "operator")
		require.NoError(t, err)

		claims, err := mgr.ValidateTokenForRealm(token, RealmAdmin)
		require.NoError(t, err)
		assert.Equal(t, "operator", claims.Role)
	})

	t.Run("unknown realm rejected at generation", func(t *testing.T) {
		_, err := mgr.GenerateToken(Realm("service"), playerID, tenantID, "")
		assert.Error(t, err)
	})
}

func TestValidateTokenForRealm(t *testing.T) {
	mgr := newTestManager()

	playerToken, err := mgr.GenerateToken(RealmPlayer, uuid.New(), uuid.New(), "")
	require.NoError(t, err)

	_, err = mgr.ValidateTokenForRealm(playerToken, RealmAdmin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected realm admin")
}

func TestValidateTokenRejects(t *testing.T) {
	mgr := newTestManager()

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("a-different-secret-that-is-long-too", time.Hour, time.Hour)
		token, err := other.GenerateToken(RealmPlayer, uuid.New(), uuid.New(), "")
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTManager("test-secret-at-least-32-chars-long", -time.Minute, -time.Minute)
		token, err := expired.GenerateToken(RealmPlayer, uuid.New(), uuid.New(), "")
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := mgr.ValidateToken("not.a.jwt")
		assert.Error(t, err)
	})
}
