package lifecycle

import "errors"

// Error taxonomy of the session protocol. Engine-level rejections keep
// their own ErrIllegalMove sentinels and are wrapped unchanged, so the
// caller can distinguish a bad move from a lost race.
var (
	// ErrStaleSessionState means a status precondition failed: the
	// session moved on while the caller held stale data. No mutation
	// happened; re-fetch and decide. The orchestrator never retries.
	ErrStaleSessionState = errors.New("session status changed, re-fetch and retry")

	// ErrOpponentUnavailable means a bind lost the race or the target
	// session vanished. The caller restarts intake.
	ErrOpponentUnavailable = errors.New("opponent no longer available")

	// ErrTransferUnconfirmed means the ledger could not verify a
	// successful transfer. Callers may re-confirm after a delay.
	ErrTransferUnconfirmed = errors.New("transfer not confirmed on ledger")

	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotParticipant guards operations against third parties.
	ErrNotParticipant = errors.New("wallet is not part of this session")

	// ErrInvalidWager rejects non-positive wagers and wagers off the
	// step grid that keeps the pot fee exact.
	ErrInvalidWager = errors.New("wager must be a positive multiple of the wager step")

	// ErrUnknownGameKind rejects intake for unsupported games.
	ErrUnknownGameKind = errors.New("unknown game kind")
)
