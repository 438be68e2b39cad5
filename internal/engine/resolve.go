package engine

import (
	"fmt"
	"math/rand"

	"backend/internal/domain"
	"backend/internal/rules"
)

// Dice は [min,max] の整数を返す。テストでは固定値を注入する。
type Dice func(min, max int) int

// RandDice は math/rand のグローバル生成器を使う本番用 Dice。
// グローバル生成器は並行アクセス安全なので、バトルごとの直列化とは独立に使える。
func RandDice(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}

// Outcome は1ターン分の解決結果。呼び出し側がバトルへ反映して永続化する。
type Outcome struct {
	Entries         []domain.TurnEntry
	AvatarHP        int
	OpponentHP      int
	Status          string
	GuardUp         bool
	SpecialCooldown int
	Turn            int
}

// ResolveTurn はアクション1回を決定的に解決する純関数。I/Oは行わない。
// クライアント申告のダメージ値はここに到達しない。効果は常にルールテーブルから再計算する。
func ResolveTurn(t *rules.Table, avatar *domain.Avatar, b *domain.Battle, action string, roll Dice) (Outcome, error) {
	if b.Status != domain.BattleActive {
		return Outcome{}, domain.ErrBattleNotActive()
	}
	if !domain.ValidAction(action) {
		return Outcome{}, domain.ErrInvalidAction()
	}
	if action == domain.ActionSpecial && b.SpecialCooldown > 0 {
		return Outcome{}, domain.ErrSpecialOnCooldown()
	}
	rule, ok := t.Action(action)
	if !ok {
		return Outcome{}, fmt.Errorf("engine: no rule for action %q", action)
	}
	class, ok := t.Class(avatar.CharacterClass)
	if !ok {
		return Outcome{}, fmt.Errorf("engine: no stats for class %q", avatar.CharacterClass)
	}

	out := Outcome{
		AvatarHP:        b.AvatarHP,
		OpponentHP:      b.OpponentHP,
		Status:          domain.BattleActive,
		GuardUp:         b.GuardUp,
		SpecialCooldown: b.SpecialCooldown,
		Turn:            b.Turn,
	}

	base := roll(rule.MinPower, rule.MaxPower)
	var amount int
	switch action {
	case domain.ActionAttack:
		amount = base + class.AttackBonus + 2*(avatar.Level-1)
		out.OpponentHP = clampMin(out.OpponentHP-amount, 0)
	case domain.ActionSpecial:
		amount = base + class.AttackBonus + 3*(avatar.Level-1)
		out.OpponentHP = clampMin(out.OpponentHP-amount, 0)
		out.SpecialCooldown = rule.Cooldown
	case domain.ActionDefend:
		amount = base
		out.OpponentHP = clampMin(out.OpponentHP-amount, 0)
		out.GuardUp = true
	case domain.ActionHeal:
		// 回復は maxHitPoints を超えない。記録する量は実際に回復した分。
		healed := base + class.HealBonus + (avatar.Level - 1)
		before := out.AvatarHP
		out.AvatarHP = clampMax(out.AvatarHP+healed, b.AvatarMaxHP)
		amount = out.AvatarHP - before
	}

	out.Entries = append(out.Entries, domain.TurnEntry{
		Turn:       b.Turn,
		Actor:      domain.ActorAvatar,
		Action:     action,
		Amount:     amount,
		AvatarHP:   out.AvatarHP,
		OpponentHP: out.OpponentHP,
	})

	if out.OpponentHP == 0 {
		out.Status = domain.BattleWon
		return out, nil
	}

	// 相手の自動反撃。ガード中は半減、防御補正を引いた後も最低1は通る。
	counter := roll(b.Opponent.MinAttack, b.Opponent.MaxAttack)
	counter -= class.DefenseBonus
	if out.GuardUp {
		counter /= 2
		out.GuardUp = false
	}
	counter = clampMin(counter, 1)
	out.AvatarHP = clampMin(out.AvatarHP-counter, 0)

	out.Entries = append(out.Entries, domain.TurnEntry{
		Turn:       b.Turn,
		Actor:      domain.ActorOpponent,
		Action:     domain.ActionAttack,
		Amount:     counter,
		AvatarHP:   out.AvatarHP,
		OpponentHP: out.OpponentHP,
	})

	if out.AvatarHP == 0 {
		out.Status = domain.BattleLost
		return out, nil
	}

	if action != domain.ActionSpecial && out.SpecialCooldown > 0 {
		out.SpecialCooldown--
	}
	out.Turn = b.Turn + 1
	return out, nil
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

func clampMax(v, max int) int {
	if v > max {
		return max
	}
	return v
}
