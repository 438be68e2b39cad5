package repository

import (
	"backend/internal/domain"
	"context"
	"database/sql"
	"errors"
	"time"
)

type RewardRepository interface {
	Unlock(ctx context.Context, userID, rewardKey string, unlockedAt time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.RewardUnlock, error)
}

type rewardRepository struct {
	db *sql.DB
}

func NewRewardRepository(db *sql.DB) RewardRepository {
	return &rewardRepository{db: db}
}

// Unlock は冪等。既に解放済みなら何も変えず false を返す。
// unlocked_at は最初の解放時刻のまま上書きされない。
func (r *rewardRepository) Unlock(ctx context.Context, userID, rewardKey string, unlockedAt time.Time) (bool, error) {
	if userID == "" || rewardKey == "" {
		return false, errors.New("userID and rewardKey are required")
	}
	if err := ensureUser(ctx, r.db, userID); err != nil {
		return false, err
	}
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO reward_unlocks (user_id, reward_key, unlocked_at)
         VALUES ($1, $2, $3)
         ON CONFLICT (user_id, reward_key) DO NOTHING`,
		userID, rewardKey, unlockedAt,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *rewardRepository) ListByUser(ctx context.Context, userID string) ([]domain.RewardUnlock, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	rows, err := executor(ctx, r.db).QueryContext(ctx,
		`SELECT user_id, reward_key, unlocked_at
         FROM reward_unlocks
         WHERE user_id = $1
         ORDER BY unlocked_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocks := []domain.RewardUnlock{}
	for rows.Next() {
		var unlock domain.RewardUnlock
		if err := rows.Scan(&unlock.UserID, &unlock.RewardKey, &unlock.UnlockedAt); err != nil {
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return unlocks, nil
}
