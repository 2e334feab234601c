package auth

import (
	"testing"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solarena/models"
)

const testWallet = "TestWa11etAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testWallet)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	valid, err := IsValidToken(token)
	require.NoError(t, err)
	assert.True(t, valid)

	wallet, err := GetWalletFromToken(token, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, testWallet, wallet)
}

func TestGetWalletRejectsGarbage(t *testing.T) {
	_, err := GetWalletFromToken("not.a.token", zap.NewNop())
	require.Error(t, err)

	_, err = GetWalletFromToken("", zap.NewNop())
	require.Error(t, err)
}

func TestGetWalletRejectsWrongKey(t *testing.T) {
	claims := &models.MyClaims{
		WalletAddress: testWallet,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-key"))
	require.NoError(t, err)

	_, err = GetWalletFromToken(forged, zap.NewNop())
	require.Error(t, err)
}

func TestRefreshIfExpiring(t *testing.T) {
	fresh, err := GenerateToken(testWallet)
	require.NoError(t, err)

	// A full-lifetime token is not refreshed for a short threshold.
	refreshed, err := RefreshIfExpiring(fresh, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, refreshed)

	// With a threshold beyond the lifetime every valid token refreshes.
	refreshed, err = RefreshIfExpiring(fresh, 48*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed)

	wallet, err := GetWalletFromToken(refreshed, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, testWallet, wallet)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	claims := &models.MyClaims{
		WalletAddress: testWallet,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(JwtKey)
	require.NoError(t, err)

	_, err = GetWalletFromToken(expired, zap.NewNop())
	require.Error(t, err)
}
