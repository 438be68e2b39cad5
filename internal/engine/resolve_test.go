package engine

import (
	"testing"

	"backend/internal/domain"
	"backend/internal/rules"
)

// seqDice は呼び出しごとに指定した値を順番に返す。min/max は無視する。
func seqDice(values ...int) Dice {
	i := 0
	return func(min, max int) int {
		v := values[i]
		i++
		return v
	}
}

func knight(level int) *domain.Avatar {
	return &domain.Avatar{
		ID:             "avatar-1",
		UserID:         "user-1",
		Name:           "Alice",
		CharacterClass: domain.ClassKnight,
		Level:          level,
		HitPoints:      100,
		MaxHitPoints:   100,
	}
}

func activeBattle() *domain.Battle {
	return &domain.Battle{
		ID:          "battle-1",
		AvatarID:    "avatar-1",
		CityNumber:  1,
		Opponent:    domain.Opponent{Name: "Ledger Imp", MaxHP: 50, MinAttack: 4, MaxAttack: 9},
		AvatarHP:    100,
		AvatarMaxHP: 100,
		OpponentHP:  50,
		Turn:        0,
		Status:      domain.BattleActive,
	}
}

func TestResolveTurnAttack(t *testing.T) {
	table := rules.Default()
	b := activeBattle()

	// 攻撃15、反撃6。Knightは攻撃+2、防御+2。
	out, err := ResolveTurn(table, knight(1), b, domain.ActionAttack, seqDice(15, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.OpponentHP != 50-17 {
		t.Errorf("expected opponent HP 33, got %d", out.OpponentHP)
	}
	if out.AvatarHP != 100-4 {
		t.Errorf("expected avatar HP 96, got %d", out.AvatarHP)
	}
	if out.Status != domain.BattleActive {
		t.Errorf("expected status active, got %s", out.Status)
	}
	if out.Turn != 1 {
		t.Errorf("expected turn 1, got %d", out.Turn)
	}
	if len(out.Entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(out.Entries))
	}
	if out.Entries[0].Actor != domain.ActorAvatar || out.Entries[0].Amount != 17 {
		t.Errorf("unexpected avatar entry: %+v", out.Entries[0])
	}
	if out.Entries[1].Actor != domain.ActorOpponent || out.Entries[1].Amount != 4 {
		t.Errorf("unexpected opponent entry: %+v", out.Entries[1])
	}
}

func TestResolveTurnAttackScalesWithLevel(t *testing.T) {
	table := rules.Default()
	b := activeBattle()

	// レベル3は攻撃に +2*(3-1) が乗る。
	out, err := ResolveTurn(table, knight(3), b, domain.ActionAttack, seqDice(10, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 50 - (10 + 2 + 4); out.OpponentHP != want {
		t.Errorf("expected opponent HP %d, got %d", want, out.OpponentHP)
	}
}

func TestResolveTurnSpecialSetsCooldown(t *testing.T) {
	table := rules.Default()
	b := activeBattle()

	out, err := ResolveTurn(table, knight(1), b, domain.ActionSpecial, seqDice(20, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SpecialCooldown != 2 {
		t.Errorf("expected cooldown 2, got %d", out.SpecialCooldown)
	}
	if out.OpponentHP != 50-22 {
		t.Errorf("expected opponent HP 28, got %d", out.OpponentHP)
	}

	// クールダウン中の special は状態を変えずに拒否される。
	b.SpecialCooldown = out.SpecialCooldown
	_, err = ResolveTurn(table, knight(1), b, domain.ActionSpecial, seqDice(20, 5))
	derr, ok := domain.AsDomainError(err)
	if !ok || derr.Kind != domain.KindState {
		t.Fatalf("expected state error for special on cooldown, got %v", err)
	}
}

func TestResolveTurnCooldownTicksDown(t *testing.T) {
	table := rules.Default()
	b := activeBattle()
	b.SpecialCooldown = 2

	out, err := ResolveTurn(table, knight(1), b, domain.ActionAttack, seqDice(10, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SpecialCooldown != 1 {
		t.Errorf("expected cooldown 1 after non-special turn, got %d", out.SpecialCooldown)
	}
}

func TestResolveTurnDefendHalvesCounter(t *testing.T) {
	table := rules.Default()
	b := activeBattle()

	// 反撃10 → 防御補正-2 → ガードで半減 → 4。
	out, err := ResolveTurn(table, knight(1), b, domain.ActionDefend, seqDice(4, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AvatarHP != 100-4 {
		t.Errorf("expected avatar HP 96, got %d", out.AvatarHP)
	}
	if out.GuardUp {
		t.Error("guard should be consumed by the counter")
	}
	if out.OpponentHP != 50-4 {
		t.Errorf("expected opponent HP 46, got %d", out.OpponentHP)
	}
}

// 保存済みのガード状態から再開しても、次の反撃で消費されるまで生きている。
func TestResolveTurnCarriedGuardHalvesCounter(t *testing.T) {
	table := rules.Default()
	b := activeBattle()
	b.GuardUp = true

	// 攻撃15+2=17、反撃10 → 防御補正-2 → 持ち越しガードで半減 → 4。
	out, err := ResolveTurn(table, knight(1), b, domain.ActionAttack, seqDice(15, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AvatarHP != 100-4 {
		t.Errorf("expected avatar HP 96, got %d", out.AvatarHP)
	}
	if out.GuardUp {
		t.Error("carried guard should be consumed by the counter")
	}
	if out.OpponentHP != 50-17 {
		t.Errorf("expected opponent HP 33, got %d", out.OpponentHP)
	}
}

func TestResolveTurnCounterAlwaysAtLeastOne(t *testing.T) {
	table := rules.Default()
	b := activeBattle()

	// 反撃2は防御+2と半減で0以下になるが、最低1は通る。
	out, err := ResolveTurn(table, knight(1), b, domain.ActionDefend, seqDice(3, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AvatarHP != 99 {
		t.Errorf("expected avatar HP 99, got %d", out.AvatarHP)
	}
}

func TestResolveTurnHealClampedAtMax(t *testing.T) {
	table := rules.Default()
	b := activeBattle()
	b.AvatarHP = 95

	out, err := ResolveTurn(table, knight(1), b, domain.ActionHeal, seqDice(20, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 回復は上限まで。記録される量は実際に戻った5。反撃4はその後に通る。
	if out.Entries[0].Amount != 5 {
		t.Errorf("expected recorded heal 5, got %d", out.Entries[0].Amount)
	}
	if out.AvatarHP != 100-4 {
		t.Errorf("expected avatar HP 96, got %d", out.AvatarHP)
	}
}

func TestResolveTurnHealAtFullStillConsumesTurn(t *testing.T) {
	table := rules.Default()
	b := activeBattle()

	out, err := ResolveTurn(table, knight(1), b, domain.ActionHeal, seqDice(25, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Entries[0].Amount != 0 {
		t.Errorf("expected zero heal at full HP, got %d", out.Entries[0].Amount)
	}
	if out.Turn != 1 {
		t.Errorf("heal at full HP must still consume the turn, got turn %d", out.Turn)
	}
}

func TestResolveTurnWinSkipsCounter(t *testing.T) {
	table := rules.Default()
	b := activeBattle()
	b.OpponentHP = 10

	out, err := ResolveTurn(table, knight(1), b, domain.ActionAttack, seqDice(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != domain.BattleWon {
		t.Fatalf("expected status won, got %s", out.Status)
	}
	if out.OpponentHP != 0 {
		t.Errorf("expected opponent HP 0, got %d", out.OpponentHP)
	}
	if len(out.Entries) != 1 {
		t.Errorf("winning blow must not be countered, got %d entries", len(out.Entries))
	}
	if out.AvatarHP != 100 {
		t.Errorf("avatar HP must be untouched on the winning turn, got %d", out.AvatarHP)
	}
}

func TestResolveTurnLoss(t *testing.T) {
	table := rules.Default()
	b := activeBattle()
	b.AvatarHP = 3

	out, err := ResolveTurn(table, knight(1), b, domain.ActionAttack, seqDice(10, 9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != domain.BattleLost {
		t.Fatalf("expected status lost, got %s", out.Status)
	}
	if out.AvatarHP != 0 {
		t.Errorf("expected avatar HP 0, got %d", out.AvatarHP)
	}
}

func TestResolveTurnRejectsInvalidAction(t *testing.T) {
	table := rules.Default()
	b := activeBattle()

	_, err := ResolveTurn(table, knight(1), b, "fireball", seqDice(10, 5))
	derr, ok := domain.AsDomainError(err)
	if !ok || derr.Kind != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveTurnRejectsTerminalBattle(t *testing.T) {
	table := rules.Default()
	b := activeBattle()
	b.Status = domain.BattleWon

	_, err := ResolveTurn(table, knight(1), b, domain.ActionAttack, seqDice(10, 5))
	derr, ok := domain.AsDomainError(err)
	if !ok || derr.Kind != domain.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}
