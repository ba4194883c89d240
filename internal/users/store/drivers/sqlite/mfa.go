package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
	"github.com/aussiebroadwan/usergate/internal/users/store"
)

type mfaRepo struct {
	db *sql.DB
}

func (r *mfaRepo) GetMFAState(ctx context.Context, account string, now time.Time) (domain.MFAState, error) {
	var (
		enabled            bool
		secret, candidate  string
		candidateExpiresAt int64
		state              domain.MFAState
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT enabled, secret, candidate, candidate_expires_at FROM mfa WHERE username = ?`,
		account,
	).Scan(&enabled, &secret, &candidate, &candidateExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MFAState{Status: domain.MFADisabled}, nil
	}
	if err != nil {
		return domain.MFAState{}, err
	}

	switch {
	case enabled:
		state.Status = domain.MFAEnabled
		state.Secret = secret
		if err := r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM recovery_codes WHERE username = ?`, account,
		).Scan(&state.RecoveryCodesRemaining); err != nil {
			return domain.MFAState{}, err
		}
	case candidate != "" && candidateExpiresAt > toMillis(now):
		state.Status = domain.MFAPending
		state.CandidateSecret = candidate
		state.CandidateExpiresAt = fromMillis(candidateExpiresAt)
	default:
		state.Status = domain.MFADisabled
	}
	return state, nil
}

func (r *mfaRepo) SetCandidateSecret(ctx context.Context, account, secret string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO mfa (username, candidate, candidate_expires_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (username) DO UPDATE
		 SET candidate = excluded.candidate,
		     candidate_expires_at = excluded.candidate_expires_at,
		     updated_at = excluded.updated_at
		 WHERE mfa.enabled = 0`,
		account, secret, toMillis(expiresAt), toMillis(time.Now()),
	)
	if err != nil {
		return err
	}
	return requireAffected(res, store.ErrAlreadyExists)
}

func (r *mfaRepo) EnableMFA(ctx context.Context, account, secret string, codeHashes []string, now time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE mfa
			 SET enabled = 1, secret = candidate, candidate = '', candidate_expires_at = 0, updated_at = ?
			 WHERE username = ? AND enabled = 0 AND candidate = ? AND candidate_expires_at > ?`,
			toMillis(now), account, secret, toMillis(now),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var enabled bool
			err := tx.QueryRowContext(ctx,
				`SELECT enabled FROM mfa WHERE username = ?`, account,
			).Scan(&enabled)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			if enabled {
				return store.ErrAlreadyExists
			}
			return store.ErrPrecondition
		}
		return replaceCodes(ctx, tx, account, codeHashes)
	})
}

func (r *mfaRepo) ReplaceRecoveryCodes(ctx context.Context, account, expectSecret string, codeHashes []string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE mfa SET updated_at = ? WHERE username = ? AND enabled = 1 AND secret = ?`,
			toMillis(time.Now()), account, expectSecret,
		)
		if err != nil {
			return err
		}
		if err := requireAffected(res, store.ErrPrecondition); err != nil {
			return err
		}
		return replaceCodes(ctx, tx, account, codeHashes)
	})
}

func (r *mfaRepo) ConsumeRecoveryCode(ctx context.Context, account, codeHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recovery_codes WHERE username = ? AND code_hash = ?`,
		account, codeHash,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *mfaRepo) DisableMFA(ctx context.Context, account, expectSecret string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM mfa WHERE username = ? AND enabled = 1 AND secret = ?`,
			account, expectSecret,
		)
		if err != nil {
			return err
		}
		if err := requireAffected(res, store.ErrPrecondition); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM recovery_codes WHERE username = ?`, account)
		return err
	})
}

func (r *mfaRepo) DeleteExpiredCandidates(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM mfa WHERE enabled = 0 AND candidate_expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func replaceCodes(ctx context.Context, tx *sql.Tx, account string, codeHashes []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM recovery_codes WHERE username = ?`, account); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO recovery_codes (username, code_hash) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range codeHashes {
		if _, err := stmt.ExecContext(ctx, account, h); err != nil {
			return err
		}
	}
	return nil
}
