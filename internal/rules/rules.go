package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Table はサーバ側で持つ静的ルール一式。クライアントの申告値は一切信用せず、
// ダメージ・経験値・解放条件はすべてここから計算する。
type Table struct {
	Actions         map[string]ActionRule `yaml:"actions"`
	Classes         map[string]ClassStats `yaml:"classes"`
	Cities          []City                `yaml:"cities"`
	LevelThresholds []int                 `yaml:"levelThresholds"`
	Rewards         []Reward              `yaml:"rewards"`
}

// ActionRule はアクション1種のダメージ/回復レンジとクールダウン。
type ActionRule struct {
	MinPower int `yaml:"minPower"`
	MaxPower int `yaml:"maxPower"`
	Cooldown int `yaml:"cooldown"`
}

// ClassStats はクラスごとの基礎値。レベル補正の純関数の入力になる。
type ClassStats struct {
	BaseMaxHP    int `yaml:"baseMaxHp"`
	HPPerLevel   int `yaml:"hpPerLevel"`
	AttackBonus  int `yaml:"attackBonus"`
	DefenseBonus int `yaml:"defenseBonus"`
	HealBonus    int `yaml:"healBonus"`
}

// City は都市1件。Difficulty はパーセント表記（100 = 等倍）。
type City struct {
	Number            int    `yaml:"number"`
	Name              string `yaml:"name"`
	Difficulty        int    `yaml:"difficulty"`
	OpponentName      string `yaml:"opponentName"`
	OpponentMaxHP     int    `yaml:"opponentMaxHp"`
	OpponentMinAttack int    `yaml:"opponentMinAttack"`
	OpponentMaxAttack int    `yaml:"opponentMaxAttack"`
	XPReward          int    `yaml:"xpReward"`
}

const (
	RewardCityClear      = "city_clear"
	RewardLevelMilestone = "level_milestone"
)

// Reward は解放条件付き報酬の定義。条件は Kind ごとに City か Level を見る。
type Reward struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title"`
	Kind  string `yaml:"kind"`
	City  int    `yaml:"city"`
	Level int    `yaml:"level"`
}

const (
	MinCityNumber = 1
	MaxCityNumber = 10
)

// Load はYAMLファイルからルールを読み込む。path が空ならコンパイル時デフォルト。
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var t Table
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate は起動時にルールの整合性を検査する。壊れたルールで戦闘を解決しないため。
func (t *Table) Validate() error {
	if len(t.Actions) == 0 {
		return errors.New("rules: no actions defined")
	}
	for name, a := range t.Actions {
		if a.MinPower < 0 || a.MaxPower < a.MinPower {
			return fmt.Errorf("rules: action %q has invalid power range [%d,%d]", name, a.MinPower, a.MaxPower)
		}
		if a.Cooldown < 0 {
			return fmt.Errorf("rules: action %q has negative cooldown", name)
		}
	}
	if len(t.Classes) == 0 {
		return errors.New("rules: no classes defined")
	}
	for name, c := range t.Classes {
		if c.BaseMaxHP <= 0 {
			return fmt.Errorf("rules: class %q must have positive base max hp", name)
		}
		if c.HPPerLevel < 0 {
			return fmt.Errorf("rules: class %q has negative hp per level", name)
		}
	}
	if len(t.Cities) != MaxCityNumber {
		return fmt.Errorf("rules: expected %d cities, got %d", MaxCityNumber, len(t.Cities))
	}
	sort.Slice(t.Cities, func(i, j int) bool { return t.Cities[i].Number < t.Cities[j].Number })
	for i, c := range t.Cities {
		if c.Number != i+1 {
			return fmt.Errorf("rules: city numbers must be contiguous 1..%d, got %d at position %d", MaxCityNumber, c.Number, i)
		}
		if c.OpponentMaxHP <= 0 {
			return fmt.Errorf("rules: city %d opponent must have positive max hp", c.Number)
		}
		if c.OpponentMinAttack < 0 || c.OpponentMaxAttack < c.OpponentMinAttack {
			return fmt.Errorf("rules: city %d opponent attack range [%d,%d] invalid", c.Number, c.OpponentMinAttack, c.OpponentMaxAttack)
		}
		if c.Difficulty <= 0 {
			return fmt.Errorf("rules: city %d difficulty must be positive", c.Number)
		}
		if c.XPReward <= 0 {
			return fmt.Errorf("rules: city %d xp reward must be positive", c.Number)
		}
	}
	if len(t.LevelThresholds) == 0 || t.LevelThresholds[0] != 0 {
		return errors.New("rules: level thresholds must start at 0 for level 1")
	}
	for i := 1; i < len(t.LevelThresholds); i++ {
		if t.LevelThresholds[i] < t.LevelThresholds[i-1] {
			return fmt.Errorf("rules: level thresholds must be non-decreasing, got %d after %d", t.LevelThresholds[i], t.LevelThresholds[i-1])
		}
	}
	seen := map[string]struct{}{}
	for _, r := range t.Rewards {
		if r.Key == "" {
			return errors.New("rules: reward key is required")
		}
		if _, ok := seen[r.Key]; ok {
			return fmt.Errorf("rules: duplicate reward key %q", r.Key)
		}
		seen[r.Key] = struct{}{}
		switch r.Kind {
		case RewardCityClear:
			if r.City < MinCityNumber || r.City > MaxCityNumber {
				return fmt.Errorf("rules: reward %q references city %d", r.Key, r.City)
			}
		case RewardLevelMilestone:
			if r.Level < 1 {
				return fmt.Errorf("rules: reward %q references level %d", r.Key, r.Level)
			}
		default:
			return fmt.Errorf("rules: reward %q has unknown kind %q", r.Key, r.Kind)
		}
	}
	return nil
}

// CityByNumber returns the city definition, or false when out of range.
func (t *Table) CityByNumber(n int) (City, bool) {
	if n < MinCityNumber || n > len(t.Cities) {
		return City{}, false
	}
	return t.Cities[n-1], true
}

// Class returns stats for a character class.
func (t *Table) Class(name string) (ClassStats, bool) {
	c, ok := t.Classes[name]
	return c, ok
}

// Action returns the rule for an action kind.
func (t *Table) Action(name string) (ActionRule, bool) {
	a, ok := t.Actions[name]
	return a, ok
}

// CityClearReward returns the reward granted for clearing the given city, if any.
func (t *Table) CityClearReward(city int) (Reward, bool) {
	for _, r := range t.Rewards {
		if r.Kind == RewardCityClear && r.City == city {
			return r, true
		}
	}
	return Reward{}, false
}

// LevelRewardsUpTo returns all level-milestone rewards satisfied at the given level.
func (t *Table) LevelRewardsUpTo(level int) []Reward {
	var out []Reward
	for _, r := range t.Rewards {
		if r.Kind == RewardLevelMilestone && level >= r.Level {
			out = append(out, r)
		}
	}
	return out
}
