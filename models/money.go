package models

// Wagers, fees and earnings are handled as integer lamports end to end.
// Floating-point SOL only appears at the HTTP boundary when rendering.
const (
	LamportsPerSOL int64 = 1_000_000_000

	// WagerStep is the smallest accepted wager increment (0.001 SOL).
	// Keeping every wager on this grid makes the basis-point pot fee exact.
	WagerStep int64 = 1_000_000

	// FeeBasisPoints is the house cut taken from the pot (3%).
	FeeBasisPoints int64 = 300
)

// PotFee returns the house fee for a pot of two equal wagers.
func PotFee(wagerLamports int64) int64 {
	pot := 2 * wagerLamports
	return pot * FeeBasisPoints / 10_000
}

// SolToLamports converts a display amount to lamports, truncating
// sub-lamport fractions.
func SolToLamports(sol float64) int64 {
	return int64(sol * float64(LamportsPerSOL))
}

// LamportsToSol converts lamports to a display amount.
func LamportsToSol(lamports int64) float64 {
	return float64(lamports) / float64(LamportsPerSOL)
}
