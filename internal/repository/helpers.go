package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ensureUser は親テーブルの users 行を必要なら作る。上流で認証済みのIDが来る前提。
func ensureUser(ctx context.Context, db *sql.DB, userID string) error {
	if userID == "" {
		return errors.New("userID is required")
	}
	_, err := executor(ctx, db).ExecContext(ctx,
		`INSERT INTO users (id) VALUES ($1)
         ON CONFLICT (id) DO NOTHING`,
		userID,
	)
	return err
}
