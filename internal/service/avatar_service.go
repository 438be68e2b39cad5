package service

import (
	"backend/internal/domain"
	"backend/internal/engine"
	"backend/internal/repository"
	"backend/internal/rules"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

type AvatarService interface {
	Create(ctx context.Context, userID, name, characterClass string) (*domain.Avatar, error)
	GetByUser(ctx context.Context, userID string) (*domain.Avatar, error)
	Rename(ctx context.Context, userID, name string) (*domain.Avatar, error)
}

type avatarService struct {
	avatarRepo repository.AvatarRepository
	rules      *rules.Table
}

func NewAvatarService(avatarRepo repository.AvatarRepository, table *rules.Table) AvatarService {
	return &avatarService{avatarRepo: avatarRepo, rules: table}
}

func (s *avatarService) Create(ctx context.Context, userID, name, characterClass string) (*domain.Avatar, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	name = strings.TrimSpace(name)
	var fields []domain.FieldError
	if f, ok := validateName(name); !ok {
		fields = append(fields, f)
	}
	if !domain.ValidCharacterClass(characterClass) {
		fields = append(fields, domain.FieldError{
			Field:   "characterClass",
			Message: "must be one of Knight, Mage, Rogue, Paladin",
		})
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError("invalid_avatar", "avatar validation failed", fields...)
	}

	existing, err := s.avatarRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAvatarExists()
	}

	class, ok := s.rules.Class(characterClass)
	if !ok {
		return nil, domain.NewValidationError("invalid_avatar", "avatar validation failed",
			domain.FieldError{Field: "characterClass", Message: "unknown character class"})
	}
	maxHP := engine.MaxHPForLevel(class, 1)
	avatar := domain.Avatar{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           name,
		CharacterClass: characterClass,
		Level:          1,
		Experience:     0,
		HitPoints:      maxHP,
		MaxHitPoints:   maxHP,
		UnlockedCities: []int{rules.MinCityNumber},
	}
	return s.avatarRepo.Create(ctx, avatar)
}

func (s *avatarService) GetByUser(ctx context.Context, userID string) (*domain.Avatar, error) {
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
	return avatar, nil
}

// Rename は名前だけ変更できる。クラスは作成後不変。
func (s *avatarService) Rename(ctx context.Context, userID, name string) (*domain.Avatar, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	name = strings.TrimSpace(name)
	if f, ok := validateName(name); !ok {
		return nil, domain.NewValidationError("invalid_avatar", "avatar validation failed", f)
	}
	avatar, err := s.avatarRepo.UpdateName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if avatar == nil {
		return nil, domain.ErrAvatarNotFound()
	}
	return avatar, nil
}

func validateName(name string) (domain.FieldError, bool) {
	runes := len([]rune(name))
	if runes < domain.AvatarNameMinLen || runes > domain.AvatarNameMaxLen {
		return domain.FieldError{Field: "name", Message: "must be 2-50 characters"}, false
	}
	if !domain.AvatarNamePattern.MatchString(name) {
		return domain.FieldError{Field: "name", Message: "may only contain letters and spaces"}, false
	}
	return domain.FieldError{}, true
}
