package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTableIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default table must validate: %v", err)
	}
}

func TestValidateRejectsBrokenTables(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Table)
	}{
		{"no actions", func(tb *Table) { tb.Actions = nil }},
		{"inverted power range", func(tb *Table) {
			tb.Actions["attack"] = ActionRule{MinPower: 20, MaxPower: 10}
		}},
		{"negative cooldown", func(tb *Table) {
			tb.Actions["special"] = ActionRule{MinPower: 1, MaxPower: 2, Cooldown: -1}
		}},
		{"no classes", func(tb *Table) { tb.Classes = nil }},
		{"zero base hp", func(tb *Table) {
			tb.Classes["Knight"] = ClassStats{BaseMaxHP: 0}
		}},
		{"missing city", func(tb *Table) { tb.Cities = tb.Cities[:9] }},
		{"duplicate city number", func(tb *Table) { tb.Cities[9].Number = 9 }},
		{"thresholds not starting at zero", func(tb *Table) { tb.LevelThresholds[0] = 10 }},
		{"decreasing thresholds", func(tb *Table) { tb.LevelThresholds[3] = 1 }},
		{"duplicate reward key", func(tb *Table) { tb.Rewards[1].Key = tb.Rewards[0].Key }},
		{"reward with unknown kind", func(tb *Table) { tb.Rewards[0].Kind = "mystery" }},
		{"city clear reward out of range", func(tb *Table) { tb.Rewards[0].City = 11 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tb := Default()
			c.mutate(tb)
			if err := tb.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestCityByNumber(t *testing.T) {
	tb := Default()

	city, ok := tb.CityByNumber(1)
	if !ok || city.Name != "Brookhollow" {
		t.Errorf("expected Brookhollow for city 1, got %+v ok=%v", city, ok)
	}
	if _, ok := tb.CityByNumber(0); ok {
		t.Error("city 0 must not exist")
	}
	if _, ok := tb.CityByNumber(11); ok {
		t.Error("city 11 must not exist")
	}
}

func TestCityClearReward(t *testing.T) {
	tb := Default()
	for n := MinCityNumber; n <= MaxCityNumber; n++ {
		r, ok := tb.CityClearReward(n)
		if !ok {
			t.Errorf("city %d has no clear reward", n)
			continue
		}
		if r.City != n {
			t.Errorf("reward %q bound to city %d, want %d", r.Key, r.City, n)
		}
	}
}

func TestLevelRewardsUpTo(t *testing.T) {
	tb := Default()

	if got := tb.LevelRewardsUpTo(4); len(got) != 0 {
		t.Errorf("expected no level rewards below 5, got %d", len(got))
	}
	if got := tb.LevelRewardsUpTo(10); len(got) != 2 {
		t.Errorf("expected 2 level rewards at level 10, got %d", len(got))
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	tb, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tb.Cities) != MaxCityNumber {
		t.Errorf("expected %d cities, got %d", MaxCityNumber, len(tb.Cities))
	}
}

func TestLoadFromYAML(t *testing.T) {
	const doc = `
actions:
  attack: {minPower: 1, maxPower: 2}
classes:
  Knight: {baseMaxHp: 10, hpPerLevel: 1}
cities:
  - {number: 1, name: A, difficulty: 100, opponentName: a, opponentMaxHp: 5, opponentMinAttack: 1, opponentMaxAttack: 2, xpReward: 10}
  - {number: 2, name: B, difficulty: 100, opponentName: b, opponentMaxHp: 5, opponentMinAttack: 1, opponentMaxAttack: 2, xpReward: 10}
  - {number: 3, name: C, difficulty: 100, opponentName: c, opponentMaxHp: 5, opponentMinAttack: 1, opponentMaxAttack: 2, xpReward: 10}
  - {number: 4, name: D, difficulty: 100, opponentName: d, opponentMaxHp: 5, opponentMinAttack: 1, opponentMaxAttack: 2, xpReward: 10}
  - {number: 5, name: E, difficulty: 100, opponentName: e, opponentMaxHp: 5, opponentMinAttack: 1, opponentMaxAttack: 2, xpReward: 10}
  - {number: 6, name: F, difficulty: 100, opponentName: f, opponentMaxHp: 5, opponentMinAttack: 1, opponentMaxAttack: 2, xpReward: 10}
  - {number: 7, name: G, difficulty: 100, opponentName: g, opponentMaxHp: 5, opponentMinAttack: 1, opponentMaxAttack: 2, xpReward: 10}
  - {number: 8, name: H, difficulty: 100, opponentName: h, opponentMaxHp: 5, opponentMinAttack: 1, opponentMaxAttack: 2, xpReward: 10}
  - {number: 9, name: I, difficulty: 100, opponentName: i, opponentMaxHp: 5, opponentMinAttack: 1, opponentMaxAttack: 2, xpReward: 10}
  - {number: 10, name: J, difficulty: 100, opponentName: j, opponentMaxHp: 5, opponentMinAttack: 1, opponentMaxAttack: 2, xpReward: 10}
levelThresholds: [0, 100]
rewards:
  - {key: city_clear_1, title: First, kind: city_clear, city: 1}
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	tb, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a, ok := tb.Action("attack"); !ok || a.MaxPower != 2 {
		t.Errorf("attack rule not loaded: %+v ok=%v", a, ok)
	}
	if c, ok := tb.Class("Knight"); !ok || c.BaseMaxHP != 10 {
		t.Errorf("Knight stats not loaded: %+v ok=%v", c, ok)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("actions: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for empty actions")
	}
}
