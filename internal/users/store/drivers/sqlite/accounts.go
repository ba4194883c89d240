package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
	"github.com/aussiebroadwan/usergate/internal/users/store"
)

type accountsRepo struct {
	db *sql.DB
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (username, password_hash, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (username) DO NOTHING`,
		a.Username, a.PasswordHash, toMillis(a.CreatedAt),
	)
	if err != nil {
		return err
	}
	return requireAffected(res, store.ErrAlreadyExists)
}

func (r *accountsRepo) GetAccount(ctx context.Context, username string) (domain.Account, error) {
	var (
		a         domain.Account
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT username, password_hash, created_at FROM accounts WHERE username = ?`,
		username,
	).Scan(&a.Username, &a.PasswordHash, &createdAt)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.CreatedAt = fromMillis(createdAt)
	return a, nil
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, username string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ? WHERE username = ?`,
		newHash, username,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, store.ErrNotFound)
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, username string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE username = ?`, username)
		if err != nil {
			return err
		}
		if err := requireAffected(res, store.ErrNotFound); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM mfa WHERE username = ?`,
			`DELETE FROM recovery_codes WHERE username = ?`,
			`DELETE FROM token_pool WHERE username = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, username); err != nil {
				return err
			}
		}
		return nil
	})
}

// requireAffected turns a write that matched no rows into errIfNone.
func requireAffected(res sql.Result, errIfNone error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errIfNone
	}
	return nil
}
