package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidateReconnectTokenBurnsAfterUse(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	ctx := context.Background()
	logger := zap.NewNop()

	info := `{"wallet":"` + hubWalletB + `","sessionID":5,"role":"playerB"}`
	require.NoError(t, rdb.Set(ctx, "reconnect:tok", info, time.Minute).Err())

	client := ValidateReconnectToken(ctx, rdb, "tok", logger)
	require.NotNil(t, client)
	assert.Equal(t, hubWalletB, client.WalletAddress)
	assert.Equal(t, uint(5), client.SessionID)
	assert.Equal(t, "playerB", client.Role)

	assert.Nil(t, ValidateReconnectToken(ctx, rdb, "tok", logger), "a used token is gone")
	assert.Nil(t, ValidateReconnectToken(ctx, rdb, "", logger))
}

func TestValidateReconnectTokenRejectsGarbage(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	ctx := context.Background()
	logger := zap.NewNop()

	assert.Nil(t, ValidateReconnectToken(ctx, rdb, "never-issued", logger))

	require.NoError(t, rdb.Set(ctx, "reconnect:bad", "not json", time.Minute).Err())
	assert.Nil(t, ValidateReconnectToken(ctx, rdb, "bad", logger))
}
