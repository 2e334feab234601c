package auth

import (
	"errors"
	"os"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"

	"solarena/models"
)

const tokenLifetime = 24 * time.Hour

// JwtKey signs every session token. Override it in production via
// SOLARENA_JWT_SECRET.
var JwtKey = []byte(signingSecret())

func signingSecret() string {
	if secret := os.Getenv("SOLARENA_JWT_SECRET"); secret != "" {
		return secret
	}
	return "dev-only-secret"
}

// GenerateToken issues a signed session token for a wallet address.
// Wallet ownership is the only identity; there is no password.
func GenerateToken(walletAddress string) (string, error) {
	claims := &models.MyClaims{
		WalletAddress: walletAddress,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenLifetime).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

func IsValidToken(tokenString string) (bool, error) {
	claims := &models.MyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil {
		return false, err
	}
	return token.Valid, nil
}

// GetWalletFromToken parses and validates a token and returns the
// wallet address it was issued for.
func GetWalletFromToken(tokenString string, logger *zap.Logger) (string, error) {
	claims := &models.MyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil {
		logger.Warn("token parse failed", zap.Error(err))
		return "", err
	}
	if !token.Valid || claims.WalletAddress == "" {
		return "", errors.New("invalid token")
	}
	return claims.WalletAddress, nil
}

// RefreshIfExpiring re-issues a token when it expires within the
// threshold, so an active player never gets logged out mid-game.
// Returns empty when no refresh is needed.
func RefreshIfExpiring(tokenString string, threshold time.Duration) (string, error) {
	claims := &models.MyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil || !token.Valid {
		return "", err
	}
	expiry := time.Unix(claims.ExpiresAt, 0)
	if time.Until(expiry) > threshold {
		return "", nil
	}
	return GenerateToken(claims.WalletAddress)
}
