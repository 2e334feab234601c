package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartPosition(t *testing.T) {
	fen := StartFEN()
	require.NotEmpty(t, fen)

	turn, err := Turn(fen)
	require.NoError(t, err)
	assert.Equal(t, White, turn)
}

func TestApplyLegalMove(t *testing.T) {
	snap, err := Apply(StartFEN(), "e2e4")
	require.NoError(t, err)
	assert.Equal(t, Black, snap.Turn)
	assert.NotEqual(t, StartFEN(), snap.FEN)
	assert.Empty(t, snap.Outcome)
	assert.Empty(t, snap.Method)
}

func TestApplyIllegalMove(t *testing.T) {
	for _, move := range []string{"e2e5", "e7e5", "a1a4", "nonsense", ""} {
		_, err := Apply(StartFEN(), move)
		require.ErrorIs(t, err, ErrIllegalMove, "move %q", move)
	}
}

func TestApplyInvalidFEN(t *testing.T) {
	_, err := Apply("not a position", "e2e4")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIllegalMove)

	_, err = Turn("not a position")
	require.Error(t, err)
}

func TestFoolsMate(t *testing.T) {
	fen := StartFEN()
	for _, move := range []string{"f2f3", "e7e5", "g2g4"} {
		snap, err := Apply(fen, move)
		require.NoError(t, err)
		require.Empty(t, snap.Outcome)
		fen = snap.FEN
	}

	snap, err := Apply(fen, "d8h4")
	require.NoError(t, err)
	assert.Equal(t, Black, snap.Outcome)
	assert.Equal(t, "Checkmate", snap.Method)
}

func TestPositionsRoundTrip(t *testing.T) {
	snap, err := Apply(StartFEN(), "g1f3")
	require.NoError(t, err)

	// The returned FEN is playable as the next input.
	next, err := Apply(snap.FEN, "g8f6")
	require.NoError(t, err)
	assert.Equal(t, White, next.Turn)
}
