package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"solarena/models"
)

const reconnectTTL = 24 * time.Hour

// storeReconnectToken issues a one-shot token the client can present
// when redialing.
func storeReconnectToken(ctx context.Context, client *models.Client, rdb *redis.Client, logger *zap.Logger) (string, error) {
	token := uuid.New().String()

	info := map[string]interface{}{
		"wallet":    client.WalletAddress,
		"sessionID": client.SessionID,
		"role":      client.Role,
	}
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	if err := rdb.Set(ctx, "reconnect:"+token, infoJSON, reconnectTTL).Err(); err != nil {
		logger.Error("storing reconnect token failed", zap.Error(err))
		return "", err
	}
	return token, nil
}

// ValidateReconnectToken resolves a reconnect token to its client
// identity and burns it so it cannot be replayed.
func ValidateReconnectToken(ctx context.Context, rdb *redis.Client, token string, logger *zap.Logger) *models.Client {
	if token == "" {
		return nil
	}
	infoJSON, err := rdb.Get(ctx, "reconnect:"+token).Result()
	if err != nil {
		logger.Info("reconnect token lookup failed", zap.Error(err))
		return nil
	}

	var info struct {
		Wallet    string `json:"wallet"`
		SessionID uint   `json:"sessionID"`
		Role      string `json:"role"`
	}
	if err := json.Unmarshal([]byte(infoJSON), &info); err != nil {
		logger.Error("reconnect token decode failed", zap.Error(err))
		return nil
	}
	rdb.Del(ctx, "reconnect:"+token)

	return &models.Client{
		WalletAddress: info.Wallet,
		SessionID:     info.SessionID,
		Role:          info.Role,
	}
}
