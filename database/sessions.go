package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"solarena/lifecycle"
	"solarena/models"
)

// SessionStore is the GORM-backed record store for the session
// lifecycle. Every transition is a conditional update guarded by the
// expected status so concurrent writers cannot clobber each other; the
// loser of a race sees RowsAffected == 0 and gets the matching
// lifecycle error instead of a silent overwrite.
type SessionStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ lifecycle.Store = (*SessionStore)(nil)

func NewSessionStore(db *gorm.DB, logger *zap.Logger) *SessionStore {
	return &SessionStore{db: db, logger: logger}
}

func (s *SessionStore) CreateSession(ctx context.Context, session *models.GameSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *SessionStore) GetSession(ctx context.Context, id uint) (*models.GameSession, error) {
	var session models.GameSession
	if err := s.db.WithContext(ctx).First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lifecycle.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) FindExactWaiting(ctx context.Context, kind string, wager int64, excludeWallet string) (*models.GameSession, error) {
	var session models.GameSession
	err := s.db.WithContext(ctx).
		Where("game_kind = ? AND wager_lamports = ? AND status = ?", kind, wager, models.StatusWaiting).
		Where("player_b = ''").
		Where("player_a <> ?", excludeWallet).
		Order("created_at ASC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) FindCompatibleWaiting(ctx context.Context, kind string, maxWager int64, excludeWallet string, limit int) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := s.db.WithContext(ctx).
		Where("game_kind = ? AND wager_lamports <= ? AND status = ?", kind, maxWager, models.StatusWaiting).
		Where("player_b = ''").
		Where("player_a <> ?", excludeWallet).
		Order("wager_lamports DESC, created_at ASC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionStore) BindOpponent(ctx context.Context, id uint, wallet string) (*models.GameSession, error) {
	// Single conditional update: only a session that is still waiting
	// with an empty seat can be bound, so two simultaneous joiners
	// cannot both succeed.
	result := s.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("id = ? AND status = ? AND player_b = ''", id, models.StatusWaiting).
		Where("player_a <> ?", wallet).
		Updates(map[string]interface{}{
			"player_b": wallet,
			"status":   models.StatusMatched,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, lifecycle.ErrOpponentUnavailable
	}
	return s.GetSession(ctx, id)
}

func (s *SessionStore) MarkDeposit(ctx context.Context, id uint, asPlayerA bool, txRef string) error {
	updates := map[string]interface{}{
		"player_a_deposited": true,
		"player_a_tx_ref":    txRef,
	}
	if !asPlayerA {
		updates = map[string]interface{}{
			"player_b_deposited": true,
			"player_b_tx_ref":    txRef,
		}
	}
	result := s.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("id = ? AND status IN ?", id, []string{models.StatusMatched, models.StatusActive}).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: deposit precondition failed for session %d", lifecycle.ErrStaleSessionState, id)
	}
	return nil
}

func (s *SessionStore) ActivateSession(ctx context.Context, id uint, startedAt time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("id = ? AND status = ? AND player_a_deposited AND player_b_deposited", id, models.StatusMatched).
		Updates(map[string]interface{}{
			"status":     models.StatusActive,
			"started_at": startedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CompleteSession is the settlement transaction: the status flip and
// both stats updates commit together or not at all.
func (s *SessionStore) CompleteSession(ctx context.Context, id uint, winnerWallet string, state json.RawMessage, completedAt time.Time, deltas map[string]lifecycle.StatsDelta) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.GameSession{}).
			Where("id = ? AND status = ?", id, models.StatusActive).
			Updates(map[string]interface{}{
				"status":        models.StatusCompleted,
				"winner_wallet": winnerWallet,
				"state":         state,
				"completed_at":  completedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: session %d is no longer active", lifecycle.ErrStaleSessionState, id)
		}

		for wallet, delta := range deltas {
			res := tx.Model(&models.User{}).
				Where("wallet_address = ?", wallet).
				Updates(map[string]interface{}{
					"total_games_played": gorm.Expr("total_games_played + ?", delta.GamesPlayed),
					"total_games_won":    gorm.Expr("total_games_won + ?", delta.GamesWon),
					"total_earnings":     gorm.Expr("total_earnings + ?", delta.Earnings),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("stats update found no user %s", wallet)
			}
		}
		return nil
	})
}

func (s *SessionStore) UpdateSessionState(ctx context.Context, id uint, expectedStatus string, state json.RawMessage) error {
	result := s.db.WithContext(ctx).
		Model(&models.GameSession{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Update("state", state)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session %d is no longer %s", lifecycle.ErrStaleSessionState, id, expectedStatus)
	}
	return nil
}

func (s *SessionStore) DeleteWaiting(ctx context.Context, id uint, owner string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND status = ? AND player_a = ?", id, models.StatusWaiting, owner).
		Delete(&models.GameSession{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session %d is not waiting anymore", lifecycle.ErrStaleSessionState, id)
	}
	return nil
}

func (s *SessionStore) EnsureUser(ctx context.Context, wallet string) error {
	username := "Player_" + wallet
	if len(wallet) > 6 {
		username = "Player_" + wallet[:6]
	}
	return s.db.WithContext(ctx).
		Where(models.User{WalletAddress: wallet}).
		Attrs(models.User{Username: username}).
		FirstOrCreate(&models.User{}).Error
}

func (s *SessionStore) RecordMove(ctx context.Context, move *models.MoveRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the session row so concurrent submissions take their
		// move numbers serially; the unique index on
		// (game_session_id, move_number) backstops the invariant.
		var session models.GameSession
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, move.GameSessionID).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.MoveRecord{}).
			Where("game_session_id = ?", move.GameSessionID).
			Count(&count).Error; err != nil {
			return err
		}
		move.MoveNumber = int(count) + 1
		return tx.Create(move).Error
	})
}

func (s *SessionStore) Leaderboard(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("total_games_played > 0").
		Order("total_games_won DESC, total_earnings DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (s *SessionStore) QueueStats(ctx context.Context, kind string, wager int64) (*lifecycle.QueueStats, error) {
	stats := &lifecycle.QueueStats{AvgWaitSeconds: 12} // optimistic default

	waiting := s.db.WithContext(ctx).Model(&models.GameSession{}).Where("status = ?", models.StatusWaiting)
	if kind != "" {
		waiting = waiting.Where("game_kind = ?", kind)
	}
	if wager > 0 {
		waiting = waiting.Where("wager_lamports = ?", wager)
	}
	if err := waiting.Count(&stats.PlayersWaiting).Error; err != nil {
		return nil, err
	}

	inProgress := s.db.WithContext(ctx).Model(&models.GameSession{}).
		Where("status IN ?", []string{models.StatusMatched, models.StatusActive})
	if kind != "" {
		inProgress = inProgress.Where("game_kind = ?", kind)
	}
	if err := inProgress.Count(&stats.GamesInProgress).Error; err != nil {
		return nil, err
	}

	// Average time-to-match over the last hour of started games.
	var recent []models.GameSession
	q := s.db.WithContext(ctx).
		Where("started_at IS NOT NULL AND created_at >= ?", time.Now().Add(-time.Hour))
	if kind != "" {
		q = q.Where("game_kind = ?", kind)
	}
	if err := q.Find(&recent).Error; err != nil {
		return nil, err
	}
	if len(recent) > 0 {
		var total float64
		for _, g := range recent {
			total += g.StartedAt.Sub(g.CreatedAt).Seconds()
		}
		stats.AvgWaitSeconds = total / float64(len(recent))
	}
	return stats, nil
}
