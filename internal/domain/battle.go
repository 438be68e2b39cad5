package domain

import "time"

// バトルの状態。active 以外は終端で、以後は書き換え不可。
const (
	BattleActive    = "active"
	BattleWon       = "won"
	BattleLost      = "lost"
	BattleAbandoned = "abandoned"
)

const (
	ActionAttack  = "attack"
	ActionDefend  = "defend"
	ActionSpecial = "special"
	ActionHeal    = "heal"
)

const (
	ActorAvatar   = "avatar"
	ActorOpponent = "opponent"
)

func ValidAction(action string) bool {
	switch action {
	case ActionAttack, ActionDefend, ActionSpecial, ActionHeal:
		return true
	default:
		return false
	}
}

// Opponent はバトル開始時にルールテーブルから切り出したスナップショット。
// 途中でルールが変わっても進行中のバトルには影響しない。
type Opponent struct {
	Name      string `json:"name"`
	MaxHP     int    `json:"maxHp"`
	MinAttack int    `json:"minAttack"`
	MaxAttack int    `json:"maxAttack"`
}

// TurnEntry は解決済みターンのログ1件。追記のみで書き換えない。
type TurnEntry struct {
	Turn       int    `json:"turn"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	Amount     int    `json:"amount"`
	AvatarHP   int    `json:"avatarHp"`
	OpponentHP int    `json:"opponentHp"`
}

type Battle struct {
	ID              string
	AvatarID        string
	CityNumber      int
	Opponent        Opponent
	AvatarHP        int
	AvatarMaxHP     int
	OpponentHP      int
	Turn            int
	Status          string
	GuardUp         bool
	SpecialCooldown int
	Log             []TurnEntry
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	EndedAt         *time.Time
}

// Terminal reports whether the battle has reached a final state.
func (b *Battle) Terminal() bool {
	return b.Status != BattleActive
}
