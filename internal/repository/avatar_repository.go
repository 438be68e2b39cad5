package repository

import (
	"backend/internal/domain"
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type AvatarRepository interface {
	Create(ctx context.Context, avatar domain.Avatar) (*domain.Avatar, error)
	GetByUser(ctx context.Context, userID string) (*domain.Avatar, error)
	GetByID(ctx context.Context, id string) (*domain.Avatar, error)
	UpdateName(ctx context.Context, userID, name string) (*domain.Avatar, error)
	ApplyProgress(ctx context.Context, avatar domain.Avatar) error
	ListWounded(ctx context.Context) ([]domain.Avatar, error)
	RestoreHP(ctx context.Context, avatarID string, amount int) error
}

type avatarRepository struct {
	db *sql.DB
}

func NewAvatarRepository(db *sql.DB) AvatarRepository {
	return &avatarRepository{db: db}
}

const avatarColumns = `id, user_id, name, character_class, level, experience,
         hit_points, max_hit_points, unlocked_cities, created_at, updated_at`

func (r *avatarRepository) Create(ctx context.Context, avatar domain.Avatar) (*domain.Avatar, error) {
	if avatar.ID == "" || avatar.UserID == "" || avatar.Name == "" || avatar.CharacterClass == "" {
		return nil, errors.New("id, userID, name, characterClass are required")
	}
	if err := ensureUser(ctx, r.db, avatar.UserID); err != nil {
		return nil, err
	}
	row := executor(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO avatars (
            id, user_id, name, character_class, level, experience,
            hit_points, max_hit_points, unlocked_cities
         ) VALUES (
            $1, $2, $3, $4, $5, $6,
            $7, $8, $9
         )
         RETURNING `+avatarColumns,
		avatar.ID, avatar.UserID, avatar.Name, avatar.CharacterClass, avatar.Level, avatar.Experience,
		avatar.HitPoints, avatar.MaxHitPoints, pq.Array(avatar.UnlockedCities),
	)
	created, err := scanAvatar(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, domain.ErrAvatarExists()
		}
		return nil, err
	}
	return created, nil
}

func (r *avatarRepository) GetByUser(ctx context.Context, userID string) (*domain.Avatar, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	row := executor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+avatarColumns+`
         FROM avatars
         WHERE user_id = $1`,
		userID,
	)
	avatar, err := scanAvatar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return avatar, nil
}

func (r *avatarRepository) GetByID(ctx context.Context, id string) (*domain.Avatar, error) {
	if id == "" {
		return nil, errors.New("id is required")
	}
	row := executor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+avatarColumns+`
         FROM avatars
         WHERE id = $1`,
		id,
	)
	avatar, err := scanAvatar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return avatar, nil
}

func (r *avatarRepository) UpdateName(ctx context.Context, userID, name string) (*domain.Avatar, error) {
	if userID == "" || name == "" {
		return nil, errors.New("userID and name are required")
	}
	row := executor(ctx, r.db).QueryRowContext(ctx,
		`UPDATE avatars
         SET name = $2, updated_at = now()
         WHERE user_id = $1
         RETURNING `+avatarColumns,
		userID, name,
	)
	avatar, err := scanAvatar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return avatar, nil
}

// ApplyProgress はバトル終端時の進行反映。アバターごとにアクティブなバトルは
// 高々1つなので、この更新は単一ライターになる。
func (r *avatarRepository) ApplyProgress(ctx context.Context, avatar domain.Avatar) error {
	if avatar.ID == "" {
		return errors.New("id is required")
	}
	_, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE avatars
         SET level = $2, experience = $3, hit_points = $4, max_hit_points = $5,
             unlocked_cities = $6, updated_at = now()
         WHERE id = $1`,
		avatar.ID, avatar.Level, avatar.Experience, avatar.HitPoints, avatar.MaxHitPoints,
		pq.Array(avatar.UnlockedCities),
	)
	return err
}

func (r *avatarRepository) ListWounded(ctx context.Context) ([]domain.Avatar, error) {
	rows, err := executor(ctx, r.db).QueryContext(ctx,
		`SELECT `+avatarColumns+`
         FROM avatars a
         WHERE a.hit_points < a.max_hit_points
           AND NOT EXISTS (
             SELECT 1 FROM battles b
             WHERE b.avatar_id = a.id AND b.status = 'active'
           )`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	avatars := []domain.Avatar{}
	for rows.Next() {
		avatar, err := scanAvatar(rows)
		if err != nil {
			return nil, err
		}
		avatars = append(avatars, *avatar)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return avatars, nil
}

func (r *avatarRepository) RestoreHP(ctx context.Context, avatarID string, amount int) error {
	if avatarID == "" {
		return errors.New("avatarID is required")
	}
	if amount <= 0 {
		return nil
	}
	_, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE avatars
         SET hit_points = LEAST(hit_points + $2, max_hit_points), updated_at = now()
         WHERE id = $1`,
		avatarID, amount,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAvatar(row rowScanner) (*domain.Avatar, error) {
	var avatar domain.Avatar
	var cities pq.Int64Array
	if err := row.Scan(
		&avatar.ID, &avatar.UserID, &avatar.Name, &avatar.CharacterClass, &avatar.Level, &avatar.Experience,
		&avatar.HitPoints, &avatar.MaxHitPoints, &cities, &avatar.CreatedAt, &avatar.UpdatedAt,
	); err != nil {
		return nil, err
	}
	avatar.UnlockedCities = make([]int, 0, len(cities))
	for _, c := range cities {
		avatar.UnlockedCities = append(avatar.UnlockedCities, int(c))
	}
	return &avatar, nil
}
