package service

import (
	"backend/internal/domain"
	"backend/internal/engine"
	"backend/internal/repository"
	"backend/internal/rules"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Announcer は解放イベントを外部に通知する任意のフック。nil でもよい。
// 通知の失敗はバトル解決に影響させない。
type Announcer interface {
	AnnounceLevelUp(avatarName string, level int)
	AnnounceCityUnlock(avatarName, cityName string, cityNumber int)
	AnnounceReward(avatarName, rewardTitle string)
}

type BattleService interface {
	Start(ctx context.Context, userID string, cityNumber int) (*domain.Battle, error)
	SubmitAction(ctx context.Context, userID, battleID, action string) (*domain.Battle, error)
	Abandon(ctx context.Context, userID, battleID string) (*domain.Battle, error)
	GetForUser(ctx context.Context, userID, battleID string) (*domain.Battle, error)
}

// errTurnRace は楽観ロック負けの内部センチネル。conflictError で分類し直す。
var errTurnRace = errors.New("battle version mismatch")

type battleService struct {
	avatarRepo repository.AvatarRepository
	battleRepo repository.BattleRepository
	rewardRepo repository.RewardRepository
	tx         repository.TxManager
	rules      *rules.Table
	dice       engine.Dice
	announcer  Announcer

	// battleLocks はバトルIDごとの直列化。同一バトルへの同時アクションが
	// 同じ解決前HPを読んで二重適用するのを防ぐ。別バトル同士は並行に進む。
	mu          sync.Mutex
	battleLocks map[string]*sync.Mutex
}

func NewBattleService(
	avatarRepo repository.AvatarRepository,
	battleRepo repository.BattleRepository,
	rewardRepo repository.RewardRepository,
	tx repository.TxManager,
	table *rules.Table,
	dice engine.Dice,
	announcer Announcer,
) BattleService {
	if dice == nil {
		dice = engine.RandDice
	}
	return &battleService{
		avatarRepo:  avatarRepo,
		battleRepo:  battleRepo,
		rewardRepo:  rewardRepo,
		tx:          tx,
		rules:       table,
		dice:        dice,
		announcer:   announcer,
		battleLocks: make(map[string]*sync.Mutex),
	}
}

func (s *battleService) lockFor(battleID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.battleLocks[battleID]
	if !ok {
		lock = &sync.Mutex{}
		s.battleLocks[battleID] = lock
	}
	return lock
}

// forgetLock は終端に入ったバトルのロックを破棄する。以降のアクションは
// 永続化された status で弾かれるので、残しておく意味がない。
func (s *battleService) forgetLock(battleID string) {
	s.mu.Lock()
	delete(s.battleLocks, battleID)
	s.mu.Unlock()
}

func (s *battleService) Start(ctx context.Context, userID string, cityNumber int) (*domain.Battle, error) {
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
	city, ok := s.rules.CityByNumber(cityNumber)
	if !ok || !avatar.HasCity(cityNumber) {
		return nil, domain.ErrInvalidCity()
	}
	existing, err := s.battleRepo.GetActiveByAvatar(ctx, avatar.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrBattleAlreadyActive()
	}

	// 双方フルHPで開始。相手プロフィールはルールからスナップショットする。
	battle := domain.Battle{
		ID:         uuid.NewString(),
		AvatarID:   avatar.ID,
		CityNumber: city.Number,
		Opponent: domain.Opponent{
			Name:      city.OpponentName,
			MaxHP:     city.OpponentMaxHP,
			MinAttack: city.OpponentMinAttack,
			MaxAttack: city.OpponentMaxAttack,
		},
		AvatarHP:    avatar.MaxHitPoints,
		AvatarMaxHP: avatar.MaxHitPoints,
		OpponentHP:  city.OpponentMaxHP,
		Turn:        0,
		Status:      domain.BattleActive,
		Log:         []domain.TurnEntry{},
	}
	return s.battleRepo.Create(ctx, battle)
}

func (s *battleService) SubmitAction(ctx context.Context, userID, battleID, action string) (*domain.Battle, error) {
	if userID == "" || battleID == "" {
		return nil, errors.New("userID and battleID are required")
	}
	lock := s.lockFor(battleID)
	lock.Lock()
	defer lock.Unlock()

	battle, avatar, err := s.ownedBattle(ctx, userID, battleID)
	if err != nil {
		return nil, err
	}
	if battle.Terminal() {
		return nil, domain.ErrBattleNotActive()
	}

	outcome, err := engine.ResolveTurn(s.rules, avatar, battle, action, s.dice)
	if err != nil {
		return nil, err
	}

	expectedVersion := battle.Version
	battle.AvatarHP = outcome.AvatarHP
	battle.OpponentHP = outcome.OpponentHP
	battle.Turn = outcome.Turn
	battle.Status = outcome.Status
	battle.GuardUp = outcome.GuardUp
	battle.SpecialCooldown = outcome.SpecialCooldown
	battle.Log = append(battle.Log, outcome.Entries...)
	if battle.Terminal() {
		now := time.Now().UTC()
		battle.EndedAt = &now
	}

	// 終端ターンはバトル更新と進行・報酬の書き込みを1トランザクションで確定
	// させる。途中で失敗したら行は active のまま残り、再試行で解決し直せる。
	var announcements []func()
	apply := func(ctx context.Context) error {
		ok, err := s.battleRepo.UpdateResolved(ctx, *battle, expectedVersion)
		if err != nil {
			return err
		}
		if !ok {
			return errTurnRace
		}
		switch battle.Status {
		case domain.BattleWon:
			announcements, err = s.resolveVictory(ctx, avatar, battle)
			return err
		case domain.BattleLost:
			return s.resolveDefeat(ctx, avatar)
		}
		return nil
	}
	var applyErr error
	if battle.Terminal() {
		applyErr = s.tx.WithinTx(ctx, apply)
	} else {
		applyErr = apply(ctx)
	}
	if errors.Is(applyErr, errTurnRace) {
		return nil, s.conflictError(ctx, battleID)
	}
	if applyErr != nil {
		return nil, applyErr
	}
	battle.Version = expectedVersion + 1

	// 通知はコミット後にだけ出す。ロールバックした解放を祝わない。
	if battle.Terminal() {
		s.forgetLock(battleID)
	}
	for _, announce := range announcements {
		announce()
	}
	return battle, nil
}

func (s *battleService) Abandon(ctx context.Context, userID, battleID string) (*domain.Battle, error) {
	if userID == "" || battleID == "" {
		return nil, errors.New("userID and battleID are required")
	}
	lock := s.lockFor(battleID)
	lock.Lock()
	defer lock.Unlock()

	battle, _, err := s.ownedBattle(ctx, userID, battleID)
	if err != nil {
		return nil, err
	}
	if battle.Terminal() {
		return nil, domain.ErrBattleNotActive()
	}

	expectedVersion := battle.Version
	battle.Status = domain.BattleAbandoned
	now := time.Now().UTC()
	battle.EndedAt = &now

	ok, err := s.battleRepo.UpdateResolved(ctx, *battle, expectedVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrBattleNotActive()
	}
	battle.Version = expectedVersion + 1
	s.forgetLock(battleID)
	return battle, nil
}

func (s *battleService) GetForUser(ctx context.Context, userID, battleID string) (*domain.Battle, error) {
	if userID == "" || battleID == "" {
		return nil, errors.New("userID and battleID are required")
	}
	battle, _, err := s.ownedBattle(ctx, userID, battleID)
	if err != nil {
		return nil, err
	}
	return battle, nil
}

func (s *battleService) ownedBattle(ctx context.Context, userID, battleID string) (*domain.Battle, *domain.Avatar, error) {
	battle, err := s.battleRepo.GetByID(ctx, battleID)
	if err != nil {
		return nil, nil, err
	}
	if battle == nil {
		return nil, nil, domain.ErrBattleNotFound()
	}
	avatar, err := s.avatarRepo.GetByID(ctx, battle.AvatarID)
	if err != nil {
		return nil, nil, err
	}
	if avatar == nil {
		return nil, nil, fmt.Errorf("battle %s references missing avatar %s", battle.ID, battle.AvatarID)
	}
	if avatar.UserID != userID {
		return nil, nil, domain.ErrNotOwner()
	}
	return battle, avatar, nil
}

// conflictError は楽観ロック負け時の分類。相手の操作で終端に入っていたら
// battle_not_active、まだ active なら再試行可能な turn_conflict。
func (s *battleService) conflictError(ctx context.Context, battleID string) error {
	current, err := s.battleRepo.GetByID(ctx, battleID)
	if err == nil && current != nil && current.Terminal() {
		return domain.ErrBattleNotActive()
	}
	return domain.ErrTurnConflict()
}

// resolveVictory は勝利時の進行反映。経験値・レベル・次都市解放・報酬を
// この終端呼び出しだけが書き込む。通知はコミット後に実行するクロージャで返す。
func (s *battleService) resolveVictory(ctx context.Context, avatar *domain.Avatar, battle *domain.Battle) ([]func(), error) {
	city, ok := s.rules.CityByNumber(battle.CityNumber)
	if !ok {
		return nil, fmt.Errorf("battle %s references unknown city %d", battle.ID, battle.CityNumber)
	}
	class, ok := s.rules.Class(avatar.CharacterClass)
	if !ok {
		return nil, fmt.Errorf("avatar %s has unknown class %q", avatar.ID, avatar.CharacterClass)
	}

	avatar.Experience += engine.VictoryExperience(city)
	newLevel := engine.LevelForExperience(s.rules.LevelThresholds, avatar.Experience)
	leveledUp := newLevel > avatar.Level
	avatar.Level = newLevel
	avatar.MaxHitPoints = engine.MaxHPForLevel(class, newLevel)
	avatar.HitPoints = battle.AvatarHP
	if avatar.HitPoints > avatar.MaxHitPoints {
		avatar.HitPoints = avatar.MaxHitPoints
	}

	// 都市解放は厳密に順次。N を倒したら N+1 だけが開く。
	next := city.Number + 1
	unlockedNext := false
	if next <= rules.MaxCityNumber && !avatar.HasCity(next) {
		avatar.UnlockedCities = append(avatar.UnlockedCities, next)
		unlockedNext = true
	}

	if err := s.avatarRepo.ApplyProgress(ctx, *avatar); err != nil {
		return nil, err
	}

	var announcements []func()
	now := time.Now().UTC()
	if reward, ok := s.rules.CityClearReward(city.Number); ok {
		announce, err := s.unlockReward(ctx, avatar, reward, now)
		if err != nil {
			return nil, err
		}
		if announce != nil {
			announcements = append(announcements, announce)
		}
	}
	for _, reward := range s.rules.LevelRewardsUpTo(newLevel) {
		announce, err := s.unlockReward(ctx, avatar, reward, now)
		if err != nil {
			return nil, err
		}
		if announce != nil {
			announcements = append(announcements, announce)
		}
	}

	if s.announcer != nil {
		if leveledUp {
			name, level := avatar.Name, newLevel
			announcements = append(announcements, func() { s.announcer.AnnounceLevelUp(name, level) })
		}
		if unlockedNext {
			if nextCity, ok := s.rules.CityByNumber(next); ok {
				name := avatar.Name
				announcements = append(announcements, func() { s.announcer.AnnounceCityUnlock(name, nextCity.Name, nextCity.Number) })
			}
		}
	}
	return announcements, nil
}

func (s *battleService) unlockReward(ctx context.Context, avatar *domain.Avatar, reward rules.Reward, now time.Time) (func(), error) {
	newly, err := s.rewardRepo.Unlock(ctx, avatar.UserID, reward.Key, now)
	if err != nil {
		return nil, err
	}
	if !newly || s.announcer == nil {
		return nil, nil
	}
	name, title := avatar.Name, reward.Title
	return func() { s.announcer.AnnounceReward(name, title) }, nil
}

// resolveDefeat は敗北時の反映。都市も報酬も増えない。HPは下限まで戻し、
// あとは回復ポーラーが時間経過で最大まで戻す。
func (s *battleService) resolveDefeat(ctx context.Context, avatar *domain.Avatar) error {
	avatar.HitPoints = engine.DefeatFloorHP(avatar.MaxHitPoints)
	return s.avatarRepo.ApplyProgress(ctx, *avatar)
}
