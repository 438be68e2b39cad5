package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"backend/internal/domain"
)

// インメモリのリポジトリ群。並行テストでも使うので全てロックで守る。

type fakeAvatarRepo struct {
	mu      sync.Mutex
	avatars map[string]*domain.Avatar

	// failNextApply が true の間、次の ApplyProgress は書き込み失敗を装う。
	failNextApply bool
}

func newFakeAvatarRepo() *fakeAvatarRepo {
	return &fakeAvatarRepo{avatars: map[string]*domain.Avatar{}}
}

func (f *fakeAvatarRepo) put(a domain.Avatar) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := a
	f.avatars[a.ID] = &copied
}

func (f *fakeAvatarRepo) Create(ctx context.Context, avatar domain.Avatar) (*domain.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.avatars {
		if a.UserID == avatar.UserID {
			return nil, domain.ErrAvatarExists()
		}
	}
	avatar.CreatedAt = time.Now()
	avatar.UpdatedAt = avatar.CreatedAt
	copied := avatar
	f.avatars[avatar.ID] = &copied
	out := copied
	return &out, nil
}

func (f *fakeAvatarRepo) GetByUser(ctx context.Context, userID string) (*domain.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.avatars {
		if a.UserID == userID {
			out := *a
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeAvatarRepo) GetByID(ctx context.Context, id string) (*domain.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.avatars[id]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (f *fakeAvatarRepo) UpdateName(ctx context.Context, userID, name string) (*domain.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.avatars {
		if a.UserID == userID {
			a.Name = name
			out := *a
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeAvatarRepo) ApplyProgress(ctx context.Context, avatar domain.Avatar) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextApply {
		f.failNextApply = false
		return errors.New("avatar storage unavailable")
	}
	stored, ok := f.avatars[avatar.ID]
	if !ok {
		return nil
	}
	stored.Level = avatar.Level
	stored.Experience = avatar.Experience
	stored.HitPoints = avatar.HitPoints
	stored.MaxHitPoints = avatar.MaxHitPoints
	stored.UnlockedCities = append([]int(nil), avatar.UnlockedCities...)
	return nil
}

func (f *fakeAvatarRepo) ListWounded(ctx context.Context) ([]domain.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Avatar
	for _, a := range f.avatars {
		if a.HitPoints < a.MaxHitPoints {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAvatarRepo) RestoreHP(ctx context.Context, avatarID string, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.avatars[avatarID]
	if !ok {
		return nil
	}
	a.HitPoints += amount
	if a.HitPoints > a.MaxHitPoints {
		a.HitPoints = a.MaxHitPoints
	}
	return nil
}

type fakeBattleRepo struct {
	mu      sync.Mutex
	battles map[string]*domain.Battle

	// failNextUpdate が true の間、UpdateResolved は楽観ロック負けを装う。
	failNextUpdate bool
}

func newFakeBattleRepo() *fakeBattleRepo {
	return &fakeBattleRepo{battles: map[string]*domain.Battle{}}
}

func (f *fakeBattleRepo) Create(ctx context.Context, battle domain.Battle) (*domain.Battle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	battle.CreatedAt = time.Now()
	battle.UpdatedAt = battle.CreatedAt
	copied := battle
	f.battles[battle.ID] = &copied
	out := copied
	return &out, nil
}

func (f *fakeBattleRepo) GetByID(ctx context.Context, id string) (*domain.Battle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.battles[id]
	if !ok {
		return nil, nil
	}
	out := *b
	out.Log = append([]domain.TurnEntry(nil), b.Log...)
	return &out, nil
}

func (f *fakeBattleRepo) GetActiveByAvatar(ctx context.Context, avatarID string) (*domain.Battle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.battles {
		if b.AvatarID == avatarID && b.Status == domain.BattleActive {
			out := *b
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeBattleRepo) UpdateResolved(ctx context.Context, battle domain.Battle, expectedVersion int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextUpdate {
		f.failNextUpdate = false
		return false, nil
	}
	stored, ok := f.battles[battle.ID]
	if !ok || stored.Version != expectedVersion || stored.Status != domain.BattleActive {
		return false, nil
	}
	battle.Version = expectedVersion + 1
	battle.UpdatedAt = time.Now()
	battle.CreatedAt = stored.CreatedAt
	copied := battle
	copied.Log = append([]domain.TurnEntry(nil), battle.Log...)
	f.battles[battle.ID] = &copied
	return true, nil
}

type fakeRewardRepo struct {
	mu      sync.Mutex
	unlocks map[string]map[string]time.Time
}

func newFakeRewardRepo() *fakeRewardRepo {
	return &fakeRewardRepo{unlocks: map[string]map[string]time.Time{}}
}

func (f *fakeRewardRepo) Unlock(ctx context.Context, userID, rewardKey string, unlockedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byUser, ok := f.unlocks[userID]
	if !ok {
		byUser = map[string]time.Time{}
		f.unlocks[userID] = byUser
	}
	if _, exists := byUser[rewardKey]; exists {
		return false, nil
	}
	byUser[rewardKey] = unlockedAt
	return true, nil
}

func (f *fakeRewardRepo) ListByUser(ctx context.Context, userID string) ([]domain.RewardUnlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.RewardUnlock{}
	for key, at := range f.unlocks[userID] {
		out = append(out, domain.RewardUnlock{UserID: userID, RewardKey: key, UnlockedAt: at})
	}
	return out, nil
}

func (f *fakeRewardRepo) has(userID, rewardKey string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.unlocks[userID][rewardKey]
	return ok
}

// fakeTxManager は本物のロールバックを模す。fn が失敗したら3リポジトリの
// 状態を WithinTx 開始時点のスナップショットへ巻き戻す。
type fakeTxManager struct {
	avatars *fakeAvatarRepo
	battles *fakeBattleRepo
	rewards *fakeRewardRepo
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	restore := m.snapshot()
	if err := fn(ctx); err != nil {
		restore()
		return err
	}
	return nil
}

func (m *fakeTxManager) snapshot() func() {
	m.avatars.mu.Lock()
	avatars := make(map[string]*domain.Avatar, len(m.avatars.avatars))
	for id, a := range m.avatars.avatars {
		copied := *a
		copied.UnlockedCities = append([]int(nil), a.UnlockedCities...)
		avatars[id] = &copied
	}
	m.avatars.mu.Unlock()

	m.battles.mu.Lock()
	battles := make(map[string]*domain.Battle, len(m.battles.battles))
	for id, b := range m.battles.battles {
		copied := *b
		copied.Log = append([]domain.TurnEntry(nil), b.Log...)
		battles[id] = &copied
	}
	m.battles.mu.Unlock()

	m.rewards.mu.Lock()
	rewards := make(map[string]map[string]time.Time, len(m.rewards.unlocks))
	for user, byUser := range m.rewards.unlocks {
		copied := make(map[string]time.Time, len(byUser))
		for key, at := range byUser {
			copied[key] = at
		}
		rewards[user] = copied
	}
	m.rewards.mu.Unlock()

	return func() {
		m.avatars.mu.Lock()
		m.avatars.avatars = avatars
		m.avatars.mu.Unlock()
		m.battles.mu.Lock()
		m.battles.battles = battles
		m.battles.mu.Unlock()
		m.rewards.mu.Lock()
		m.rewards.unlocks = rewards
		m.rewards.mu.Unlock()
	}
}

type recordingAnnouncer struct {
	mu          sync.Mutex
	levelUps    []int
	cityUnlocks []int
	rewards     []string
}

func (r *recordingAnnouncer) AnnounceLevelUp(avatarName string, level int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levelUps = append(r.levelUps, level)
}

func (r *recordingAnnouncer) AnnounceCityUnlock(avatarName, cityName string, cityNumber int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cityUnlocks = append(r.cityUnlocks, cityNumber)
}

func (r *recordingAnnouncer) AnnounceReward(avatarName, rewardTitle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rewards = append(r.rewards, rewardTitle)
}
