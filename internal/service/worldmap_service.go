package service

import (
	"backend/internal/domain"
	"backend/internal/repository"
	"backend/internal/rules"
	"context"
	"errors"
)

// CityStatus はワールドマップ上の都市1件の見え方。
type CityStatus struct {
	Number     int
	Name       string
	Difficulty int
	Unlocked   bool
	Cleared    bool
}

type WorldMapService interface {
	Map(ctx context.Context, userID string) ([]CityStatus, error)
}

type worldMapService struct {
	avatarRepo repository.AvatarRepository
	rewardRepo repository.RewardRepository
	rules      *rules.Table
}

func NewWorldMapService(avatarRepo repository.AvatarRepository, rewardRepo repository.RewardRepository, table *rules.Table) WorldMapService {
	return &worldMapService{avatarRepo: avatarRepo, rewardRepo: rewardRepo, rules: table}
}

func (s *worldMapService) Map(ctx context.Context, userID string) ([]CityStatus, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	avatar, err := s.avatarRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if avatar == nil {
		return nil, domain.ErrAvatarNotFound()
	}
	unlocks, err := s.rewardRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocked := map[string]struct{}{}
	for _, u := range unlocks {
		unlocked[u.RewardKey] = struct{}{}
	}

	cities := make([]CityStatus, 0, len(s.rules.Cities))
	for _, c := range s.rules.Cities {
		cleared := false
		if reward, ok := s.rules.CityClearReward(c.Number); ok {
			_, cleared = unlocked[reward.Key]
		}
		cities = append(cities, CityStatus{
			Number:     c.Number,
			Name:       c.Name,
			Difficulty: c.Difficulty,
			Unlocked:   avatar.HasCity(c.Number),
			Cleared:    cleared,
		})
	}
	return cities, nil
}
