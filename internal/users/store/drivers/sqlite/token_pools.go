package sqlite

import (
	"context"
	"database/sql"
	"time"
)

type tokenPoolsRepo struct {
	db *sql.DB
}

func (r *tokenPoolsRepo) AddToken(ctx context.Context, account, audience, tokenID string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO token_pool (username, audience, token_id, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (username, audience, token_id) DO UPDATE SET expires_at = excluded.expires_at`,
		account, audience, tokenID, toMillis(expiresAt),
	)
	return err
}

func (r *tokenPoolsRepo) HasToken(ctx context.Context, account, audience, tokenID string, now time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM token_pool
		 WHERE username = ? AND audience = ? AND token_id = ? AND expires_at > ?`,
		account, audience, tokenID, toMillis(now),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *tokenPoolsRepo) RemoveToken(ctx context.Context, account, audience, tokenID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM token_pool WHERE username = ? AND audience = ? AND token_id = ?`,
		account, audience, tokenID,
	)
	return err
}

func (r *tokenPoolsRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM token_pool WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
