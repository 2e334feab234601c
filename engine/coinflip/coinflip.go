// Package coinflip resolves a wagered single coin toss. The draw comes
// from a caller-supplied entropy source (crypto/rand in production) and
// all money math is exact integer lamports.
package coinflip

import (
	"errors"
	"fmt"
	"io"

	"solarena/models"
)

// ErrInvalidCall rejects any call that names neither side of the coin.
var ErrInvalidCall = errors.New("invalid call")

// Outcome of a toss.
type Outcome string

const (
	Heads Outcome = "heads"
	Tails Outcome = "tails"
)

// ValidCall reports whether s names a side of the coin.
func ValidCall(s string) bool {
	return Outcome(s) == Heads || Outcome(s) == Tails
}

// Flip draws one byte from src and maps it even→heads, odd→tails.
// With a CSPRNG behind src the result is uniform by construction. The
// drawn byte is returned so results can be published for verification.
func Flip(src io.Reader) (Outcome, byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		return "", 0, fmt.Errorf("drawing random byte: %w", err)
	}
	if buf[0]%2 == 0 {
		return Heads, buf[0], nil
	}
	return Tails, buf[0], nil
}

// Resolve picks the winner index (0 for the first caller, 1 for the
// second). The first caller wins on a matching call; otherwise the
// second caller takes the pot, whatever they called.
func Resolve(callA, callB Outcome, outcome Outcome) int {
	if callA == outcome {
		return 0
	}
	return 1
}

// Payout computes the settlement for equal wagers. All identities are
// exact in lamports: payout + fee == pot == 2*wager, and fee is the pot
// times the fixed basis-point rate.
func Payout(wagerLamports int64) (pot, fee, winnerPayout int64) {
	pot = 2 * wagerLamports
	fee = models.PotFee(wagerLamports)
	winnerPayout = pot - fee
	return pot, fee, winnerPayout
}
