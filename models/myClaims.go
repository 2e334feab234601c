package models

import (
	jwt "github.com/dgrijalva/jwt-go"
)

// MyClaims is the JWT claim set issued after a wallet connects.
type MyClaims struct {
	WalletAddress string `json:"walletAddress"`
	jwt.StandardClaims
}
