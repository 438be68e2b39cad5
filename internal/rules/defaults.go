package rules

// Default はコンパイル時に埋め込まれた標準ルール。RULES_PATH 未設定ならこれを使う。
func Default() *Table {
	return &Table{
		Actions: map[string]ActionRule{
			"attack":  {MinPower: 10, MaxPower: 20},
			"special": {MinPower: 16, MaxPower: 30, Cooldown: 2},
			"defend":  {MinPower: 3, MaxPower: 6},
			"heal":    {MinPower: 15, MaxPower: 25},
		},
		Classes: map[string]ClassStats{
			"Knight":  {BaseMaxHP: 100, HPPerLevel: 10, AttackBonus: 2, DefenseBonus: 2, HealBonus: 0},
			"Mage":    {BaseMaxHP: 80, HPPerLevel: 8, AttackBonus: 5, DefenseBonus: 0, HealBonus: 2},
			"Rogue":   {BaseMaxHP: 90, HPPerLevel: 9, AttackBonus: 4, DefenseBonus: 1, HealBonus: 0},
			"Paladin": {BaseMaxHP: 110, HPPerLevel: 11, AttackBonus: 1, DefenseBonus: 3, HealBonus: 5},
		},
		Cities: []City{
			{Number: 1, Name: "Brookhollow", Difficulty: 100, OpponentName: "Ledger Imp", OpponentMaxHP: 50, OpponentMinAttack: 4, OpponentMaxAttack: 9, XPReward: 50},
			{Number: 2, Name: "Coppervale", Difficulty: 115, OpponentName: "Copper Golem", OpponentMaxHP: 70, OpponentMinAttack: 5, OpponentMaxAttack: 11, XPReward: 60},
			{Number: 3, Name: "Silverford", Difficulty: 130, OpponentName: "Silver Wraith", OpponentMaxHP: 90, OpponentMinAttack: 6, OpponentMaxAttack: 13, XPReward: 70},
			{Number: 4, Name: "Gildenport", Difficulty: 145, OpponentName: "Harbor Serpent", OpponentMaxHP: 110, OpponentMinAttack: 8, OpponentMaxAttack: 15, XPReward: 85},
			{Number: 5, Name: "Marblecrest", Difficulty: 160, OpponentName: "Marble Sentinel", OpponentMaxHP: 130, OpponentMinAttack: 9, OpponentMaxAttack: 17, XPReward: 100},
			{Number: 6, Name: "Emberfall", Difficulty: 180, OpponentName: "Ember Drake", OpponentMaxHP: 150, OpponentMinAttack: 11, OpponentMaxAttack: 19, XPReward: 120},
			{Number: 7, Name: "Frostmere", Difficulty: 200, OpponentName: "Frost Revenant", OpponentMaxHP: 170, OpponentMinAttack: 12, OpponentMaxAttack: 22, XPReward: 140},
			{Number: 8, Name: "Stormwatch", Difficulty: 225, OpponentName: "Storm Colossus", OpponentMaxHP: 190, OpponentMinAttack: 14, OpponentMaxAttack: 24, XPReward: 165},
			{Number: 9, Name: "Shadowfen", Difficulty: 250, OpponentName: "Fen Tyrant", OpponentMaxHP: 210, OpponentMinAttack: 16, OpponentMaxAttack: 27, XPReward: 190},
			{Number: 10, Name: "Aurelia", Difficulty: 280, OpponentName: "Gold Dragon", OpponentMaxHP: 240, OpponentMinAttack: 18, OpponentMaxAttack: 30, XPReward: 220},
		},
		// index i = レベル i+1 に必要な累計経験値。
		LevelThresholds: []int{0, 100, 250, 450, 700, 1000, 1350, 1750, 2200, 2700, 3250, 3850, 4500, 5200, 6000},
		Rewards: []Reward{
			{Key: "city_clear_1", Title: "Brookhollow Liberator", Kind: RewardCityClear, City: 1},
			{Key: "city_clear_2", Title: "Coppervale Liberator", Kind: RewardCityClear, City: 2},
			{Key: "city_clear_3", Title: "Silverford Liberator", Kind: RewardCityClear, City: 3},
			{Key: "city_clear_4", Title: "Gildenport Liberator", Kind: RewardCityClear, City: 4},
			{Key: "city_clear_5", Title: "Marblecrest Liberator", Kind: RewardCityClear, City: 5},
			{Key: "city_clear_6", Title: "Emberfall Liberator", Kind: RewardCityClear, City: 6},
			{Key: "city_clear_7", Title: "Frostmere Liberator", Kind: RewardCityClear, City: 7},
			{Key: "city_clear_8", Title: "Stormwatch Liberator", Kind: RewardCityClear, City: 8},
			{Key: "city_clear_9", Title: "Shadowfen Liberator", Kind: RewardCityClear, City: 9},
			{Key: "city_clear_10", Title: "Champion of Aurelia", Kind: RewardCityClear, City: 10},
			{Key: "level_5", Title: "Seasoned Adventurer", Kind: RewardLevelMilestone, Level: 5},
			{Key: "level_10", Title: "Veteran Adventurer", Kind: RewardLevelMilestone, Level: 10},
			{Key: "level_15", Title: "Living Legend", Kind: RewardLevelMilestone, Level: 15},
		},
	}
}
