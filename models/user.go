package models

import (
	"gorm.io/gorm"
)

// User is keyed by wallet address. Earnings are signed lamports so a
// losing streak goes negative instead of clamping.
type User struct {
	gorm.Model
	WalletAddress    string `gorm:"unique;not null"`
	Username         string
	TotalGamesPlayed int   `gorm:"not null;default:0"`
	TotalGamesWon    int   `gorm:"not null;default:0"`
	TotalEarnings    int64 `gorm:"not null;default:0"` // lamports, signed
}
