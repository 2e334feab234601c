package coinflip

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarena/models"
)

func TestFlip(t *testing.T) {
	outcome, drawn, err := Flip(bytes.NewReader([]byte{42}))
	require.NoError(t, err)
	assert.Equal(t, Heads, outcome)
	assert.Equal(t, byte(42), drawn)

	outcome, drawn, err = Flip(bytes.NewReader([]byte{7}))
	require.NoError(t, err)
	assert.Equal(t, Tails, outcome)
	assert.Equal(t, byte(7), drawn)
}

func TestFlipEmptySource(t *testing.T) {
	_, _, err := Flip(bytes.NewReader(nil))
	require.Error(t, err)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestFlipReaderFailure(t *testing.T) {
	_, _, err := Flip(brokenReader{})
	require.Error(t, err)
}

func TestValidCall(t *testing.T) {
	assert.True(t, ValidCall("heads"))
	assert.True(t, ValidCall("tails"))
	assert.False(t, ValidCall("edge"))
	assert.False(t, ValidCall(""))
	assert.False(t, ValidCall("Heads"))
}

func TestResolve(t *testing.T) {
	// The first caller wins on a match; otherwise the second caller
	// takes it regardless of their own call.
	assert.Equal(t, 0, Resolve(Heads, Tails, Heads))
	assert.Equal(t, 1, Resolve(Heads, Tails, Tails))
	assert.Equal(t, 0, Resolve(Tails, Tails, Tails))
	assert.Equal(t, 1, Resolve(Tails, Tails, Heads))
	assert.Equal(t, 0, Resolve(Heads, Heads, Heads))
	assert.Equal(t, 1, Resolve(Heads, Heads, Tails))
}

func TestPayout(t *testing.T) {
	wager := int64(50 * models.WagerStep) // 0.05 SOL

	pot, fee, payout := Payout(wager)
	assert.Equal(t, 2*wager, pot)
	assert.Equal(t, pot*300/10_000, fee)
	assert.Equal(t, pot, payout+fee, "settlement must be exact")
}

func TestPayoutExactOnWagerGrid(t *testing.T) {
	for _, steps := range []int64{1, 3, 10, 999, 1_000_000} {
		wager := steps * models.WagerStep
		pot, fee, payout := Payout(wager)
		assert.Equal(t, pot, payout+fee)
		assert.Greater(t, payout, wager, "the winner always nets more than their stake")
	}
}
