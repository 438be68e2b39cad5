package engine

import "backend/internal/rules"

// LevelForExperience は累計経験値からレベルを導く。閾値テーブルは単調非減少。
func LevelForExperience(thresholds []int, xp int) int {
	level := 1
	for i, need := range thresholds {
		if xp >= need {
			level = i + 1
		} else {
			break
		}
	}
	return level
}

// MaxHPForLevel はレベルとクラスだけで決まる純関数。隠れ状態は持たない。
func MaxHPForLevel(c rules.ClassStats, level int) int {
	if level < 1 {
		level = 1
	}
	return c.BaseMaxHP + c.HPPerLevel*(level-1)
}

// VictoryExperience は都市の難易度で補正した獲得経験値。
func VictoryExperience(c rules.City) int {
	return c.XPReward * c.Difficulty / 100
}

// DefeatFloorHP は敗北後に復帰させる最低HP（最大値の2割、切り上げ、最低1）。
// 敗北しても外部の回復操作なしで次のバトルを開始できるようにする。
func DefeatFloorHP(maxHP int) int {
	floor := (maxHP*20 + 99) / 100
	if floor < 1 {
		floor = 1
	}
	return floor
}
