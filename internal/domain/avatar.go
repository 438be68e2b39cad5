package domain

import (
	"regexp"
	"time"
)

// キャラクタークラスは作成後に変更不可。
const (
	ClassKnight  = "Knight"
	ClassMage    = "Mage"
	ClassRogue   = "Rogue"
	ClassPaladin = "Paladin"
)

// AvatarNamePattern は名前のバリデーション規則（英字・アクセント付き文字・空白のみ）。
var AvatarNamePattern = regexp.MustCompile(`^[A-Za-z\x{00C0}-\x{00FF}\s]+$`)

const (
	AvatarNameMinLen = 2
	AvatarNameMaxLen = 50
)

func ValidCharacterClass(class string) bool {
	switch class {
	case ClassKnight, ClassMage, ClassRogue, ClassPaladin:
		return true
	default:
		return false
	}
}

type Avatar struct {
	ID             string
	UserID         string
	Name           string
	CharacterClass string
	Level          int
	Experience     int
	HitPoints      int
	MaxHitPoints   int
	UnlockedCities []int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasCity reports whether the given city number is unlocked.
func (a *Avatar) HasCity(city int) bool {
	for _, c := range a.UnlockedCities {
		if c == city {
			return true
		}
	}
	return false
}
