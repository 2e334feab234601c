package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPotFeeExactOnWagerGrid(t *testing.T) {
	for _, steps := range []int64{1, 2, 7, 100, 12345} {
		wager := steps * WagerStep
		fee := PotFee(wager)
		pot := 2 * wager

		assert.Equal(t, pot*FeeBasisPoints/10_000, fee)
		assert.Zero(t, (pot*FeeBasisPoints)%10_000, "fee must divide exactly on the wager grid")
		assert.Positive(t, fee)
	}
}

func TestSolLamportsConversion(t *testing.T) {
	assert.Equal(t, int64(LamportsPerSOL), SolToLamports(1))
	assert.Equal(t, int64(WagerStep), SolToLamports(0.001))
	assert.InDelta(t, 0.5, LamportsToSol(LamportsPerSOL/2), 1e-9)
}

func TestSessionHelpers(t *testing.T) {
	s := GameSession{PlayerA: "alice", PlayerB: "bob", WagerLamports: 5 * WagerStep}

	assert.Equal(t, "bob", s.Opponent("alice"))
	assert.Equal(t, "alice", s.Opponent("bob"))
	assert.Empty(t, s.Opponent("mallory"))

	assert.True(t, s.HasParticipant("alice"))
	assert.False(t, s.HasParticipant("mallory"))
	assert.False(t, s.HasParticipant(""))

	assert.Equal(t, int64(10*WagerStep), s.PotLamports())
}

func TestValidGameKind(t *testing.T) {
	for _, kind := range []string{KindChess, KindCheckers, KindConnectFour, KindCoinFlip} {
		assert.True(t, ValidGameKind(kind))
	}
	assert.False(t, ValidGameKind("go"))
	assert.False(t, ValidGameKind(""))
}
