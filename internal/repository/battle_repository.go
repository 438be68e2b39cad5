package repository

import (
	"backend/internal/domain"
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
)

type BattleRepository interface {
	Create(ctx context.Context, battle domain.Battle) (*domain.Battle, error)
	GetByID(ctx context.Context, id string) (*domain.Battle, error)
	GetActiveByAvatar(ctx context.Context, avatarID string) (*domain.Battle, error)
	UpdateResolved(ctx context.Context, battle domain.Battle, expectedVersion int) (bool, error)
}

type battleRepository struct {
	db *sql.DB
}

func NewBattleRepository(db *sql.DB) BattleRepository {
	return &battleRepository{db: db}
}

const battleColumns = `id, avatar_id, city_number, opponent, avatar_hp, avatar_max_hp,
         opponent_hp, turn, status, guard_up, special_cooldown, log, version,
         created_at, updated_at, ended_at`

func (r *battleRepository) Create(ctx context.Context, battle domain.Battle) (*domain.Battle, error) {
	if battle.ID == "" || battle.AvatarID == "" {
		return nil, errors.New("id and avatarID are required")
	}
	opponent, err := json.Marshal(battle.Opponent)
	if err != nil {
		return nil, err
	}
	log, err := marshalLog(battle.Log)
	if err != nil {
		return nil, err
	}
	row := executor(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO battles (
            id, avatar_id, city_number, opponent, avatar_hp, avatar_max_hp,
            opponent_hp, turn, status, guard_up, special_cooldown, log, version
         ) VALUES (
            $1, $2, $3, $4, $5, $6,
            $7, $8, $9, $10, $11, $12, $13
         )
         RETURNING `+battleColumns,
		battle.ID, battle.AvatarID, battle.CityNumber, opponent, battle.AvatarHP, battle.AvatarMaxHP,
		battle.OpponentHP, battle.Turn, battle.Status, battle.GuardUp, battle.SpecialCooldown, log, battle.Version,
	)
	created, err := scanBattle(row)
	if err != nil {
		return nil, mapBattleCreateError(err)
	}
	return created, nil
}

// mapBattleCreateError は同一アバターの active 重複（部分ユニーク制約
// uq_battles_active_avatar）をドメインの競合に写像する。サービス側の
// 事前チェックをすり抜けた同時開始の敗者がここに落ちる。
func mapBattleCreateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrBattleAlreadyActive()
	}
	return err
}

func (r *battleRepository) GetByID(ctx context.Context, id string) (*domain.Battle, error) {
	if id == "" {
		return nil, errors.New("id is required")
	}
	row := executor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+battleColumns+`
         FROM battles
         WHERE id = $1`,
		id,
	)
	battle, err := scanBattle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return battle, nil
}

func (r *battleRepository) GetActiveByAvatar(ctx context.Context, avatarID string) (*domain.Battle, error) {
	if avatarID == "" {
		return nil, errors.New("avatarID is required")
	}
	row := executor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+battleColumns+`
         FROM battles
         WHERE avatar_id = $1 AND status = 'active'
         ORDER BY created_at DESC
         LIMIT 1`,
		avatarID,
	)
	battle, err := scanBattle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return battle, nil
}

// UpdateResolved は楽観ロック付きの更新。version が一致し status がまだ active の
// 行だけを書き換える。0行更新なら false を返し、呼び出し側が競合として扱う。
func (r *battleRepository) UpdateResolved(ctx context.Context, battle domain.Battle, expectedVersion int) (bool, error) {
	if battle.ID == "" {
		return false, errors.New("id is required")
	}
	log, err := marshalLog(battle.Log)
	if err != nil {
		return false, err
	}
	var endedAt any
	if battle.EndedAt != nil {
		endedAt = *battle.EndedAt
	}
	res, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE battles
         SET avatar_hp = $2, opponent_hp = $3, turn = $4, status = $5,
             guard_up = $6, special_cooldown = $7, log = $8,
             version = version + 1, ended_at = $9, updated_at = now()
         WHERE id = $1 AND version = $10 AND status = 'active'`,
		battle.ID, battle.AvatarHP, battle.OpponentHP, battle.Turn, battle.Status,
		battle.GuardUp, battle.SpecialCooldown, log, endedAt, expectedVersion,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func marshalLog(entries []domain.TurnEntry) ([]byte, error) {
	if entries == nil {
		entries = []domain.TurnEntry{}
	}
	return json.Marshal(entries)
}

func scanBattle(row rowScanner) (*domain.Battle, error) {
	var battle domain.Battle
	var opponent, log []byte
	var endedAt sql.NullTime
	if err := row.Scan(
		&battle.ID, &battle.AvatarID, &battle.CityNumber, &opponent, &battle.AvatarHP, &battle.AvatarMaxHP,
		&battle.OpponentHP, &battle.Turn, &battle.Status, &battle.GuardUp, &battle.SpecialCooldown, &log, &battle.Version,
		&battle.CreatedAt, &battle.UpdatedAt, &endedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(opponent, &battle.Opponent); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(log, &battle.Log); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		battle.EndedAt = &t
	}
	return &battle, nil
}
