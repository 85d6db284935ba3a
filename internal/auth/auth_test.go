package auth

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/partnerbilling/internal/config"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Configuration {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.APIKey.Keys = map[string]config.APIKeyDetails{
		HashAPIKey("live-key"):    {UserID: "svc_1", Name: "billing job", Role: types.RoleBillingManager, IsActive: true},
		HashAPIKey("revoked-key"): {UserID: "svc_2", Name: "old job", Role: types.RoleAdmin, IsActive: false},
	}
	return cfg
}

func TestTokenRoundTrip(t *testing.T) {
	p := NewTokenProvider(testConfig())

	token, err := p.GenerateToken(Claims{UserID: "usr_1", Email: "ops@example.com", Role: types.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	claims, err := p.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, types.RoleAdmin, claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	p := NewTokenProvider(testConfig())
	other := &TokenProvider{secret: []byte("another-secret")}

	expired, err := p.GenerateToken(Claims{UserID: "usr_1", Role: types.RoleUser}, -time.Minute)
	require.NoError(t, err)
	foreign, err := other.GenerateToken(Claims{UserID: "usr_1", Role: types.RoleUser}, time.Hour)
	require.NoError(t, err)
	badRole, err := p.GenerateToken(Claims{UserID: "usr_1", Role: "superuser"}, time.Hour)
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong secret", foreign},
		{"unknown role", badRole},
		{"missing user", noUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ValidateToken(context.Background(), tt.token)
			require.Error(t, err)
			assert.True(t, ierr.IsPermissionDenied(err))
		})
	}
}

func TestValidateTokenDefaultsRole(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "usr_1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := NewTokenProvider(testConfig()).ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, types.RoleUser, claims.Role)
}

func TestValidateAPIKey(t *testing.T) {
	cfg := testConfig()

	details, ok := ValidateAPIKey(cfg, "live-key")
	require.True(t, ok)
	assert.Equal(t, "svc_1", details.UserID)
	assert.Equal(t, types.RoleBillingManager, details.Role)

	_, ok = ValidateAPIKey(cfg, "revoked-key")
	assert.False(t, ok)

	_, ok = ValidateAPIKey(cfg, "unknown")
	assert.False(t, ok)

	assert.Len(t, GenerateAPIKey(), 64)
}
