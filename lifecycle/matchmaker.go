package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"solarena/models"
)

// Candidate is a joinable waiting session at a lower wager, offered to
// the requester instead of silently downgrading their stake.
type Candidate struct {
	SessionID     uint    `json:"gameId"`
	WagerLamports int64   `json:"wagerLamports"`
	WagerSol      float64 `json:"wagerAmount"`
	Opponent      string  `json:"opponent"`
}

// MatchResult is the outcome of one intake pass.
type MatchResult struct {
	// Matched is true when the requester was bound to an existing
	// waiting session.
	Matched bool
	// Created is true when a fresh waiting session was opened instead.
	Created bool
	// Session is the bound or created session; nil when only
	// candidates are on offer.
	Session *models.GameSession
	// Candidates holds compatible lower-wager sessions for the
	// requester to accept explicitly.
	Candidates []Candidate
}

// matchCandidateLimit caps how many compatible sessions are offered.
const matchCandidateLimit = 3

// resolveMatch runs the pairing policy: exact wager first (oldest
// wins), then compatible wagers (<= requested, highest first) offered
// as candidates, then a new waiting session. A requester is never
// paired with their own session; the store queries exclude it and the
// bind re-checks the invariant.
func resolveMatch(ctx context.Context, store Store, logger *zap.Logger, kind, wallet string, wager int64) (*MatchResult, error) {
	exact, err := store.FindExactWaiting(ctx, kind, wager, wallet)
	if err != nil {
		return nil, fmt.Errorf("searching for exact match: %w", err)
	}
	if exact != nil {
		bound, err := store.BindOpponent(ctx, exact.ID, wallet)
		if err != nil {
			// Lost the bind race; the caller restarts intake.
			return nil, err
		}
		logger.Info("matchmaking bound to waiting session",
			zap.Uint("sessionID", bound.ID),
			zap.String("kind", kind),
			zap.Int64("wager", wager),
		)
		return &MatchResult{Matched: true, Session: bound}, nil
	}

	compatible, err := store.FindCompatibleWaiting(ctx, kind, wager, wallet, matchCandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("searching for compatible match: %w", err)
	}
	if len(compatible) > 0 {
		candidates := make([]Candidate, 0, len(compatible))
		for _, s := range compatible {
			candidates = append(candidates, Candidate{
				SessionID:     s.ID,
				WagerLamports: s.WagerLamports,
				WagerSol:      models.LamportsToSol(s.WagerLamports),
				Opponent:      s.PlayerA,
			})
		}
		return &MatchResult{Candidates: candidates}, nil
	}

	session := &models.GameSession{
		GameKind:         kind,
		PlayerA:          wallet,
		WagerLamports:    wager,
		HouseFeeLamports: models.PotFee(wager),
		Status:           models.StatusWaiting,
	}
	if err := store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating waiting session: %w", err)
	}
	logger.Info("matchmaking opened waiting session",
		zap.Uint("sessionID", session.ID),
		zap.String("kind", kind),
		zap.Int64("wager", wager),
	)
	return &MatchResult{Created: true, Session: session}, nil
}
