package domain

import "time"

// RewardUnlock は獲得済み報酬1件。unlocked_at は一度だけ設定される。
type RewardUnlock struct {
	UserID     string
	RewardKey  string
	UnlockedAt time.Time
}
