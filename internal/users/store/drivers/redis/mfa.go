package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
	"github.com/aussiebroadwan/usergate/internal/users/store"
	"github.com/redis/go-redis/v9"
)

// A hash holding only a candidate expires with it; PERSIST on enable.
var setCandidateScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'enabled') == '1' then
	return 0
end
redis.call('HSET', KEYS[1], 'enabled', '0', 'secret', '', 'candidate', ARGV[1], 'candidate_expires_at', ARGV[2])
redis.call('PEXPIREAT', KEYS[1], ARGV[2])
return 1
`)

// Returns -1 when already enabled, 0 when secret is not the live candidate.
var enableScript = redis.NewScript(`
local st = redis.call('HMGET', KEYS[1], 'enabled', 'candidate', 'candidate_expires_at')
if st[1] == '1' then
	return -1
end
if st[2] ~= ARGV[1] or st[2] == false or tonumber(st[3] or '0') <= tonumber(ARGV[2]) then
	return 0
end
redis.call('HSET', KEYS[1], 'enabled', '1', 'secret', ARGV[1], 'candidate', '', 'candidate_expires_at', '0')
redis.call('PERSIST', KEYS[1])
redis.call('DEL', KEYS[2])
if #ARGV > 2 then
	redis.call('SADD', KEYS[2], unpack(ARGV, 3))
end
return 1
`)

var replaceCodesScript = redis.NewScript(`
local st = redis.call('HMGET', KEYS[1], 'enabled', 'secret')
if st[1] ~= '1' or st[2] ~= ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[2])
if #ARGV > 1 then
	redis.call('SADD', KEYS[2], unpack(ARGV, 2))
end
return 1
`)

var disableScript = redis.NewScript(`
local st = redis.call('HMGET', KEYS[1], 'enabled', 'secret')
if st[1] ~= '1' or st[2] ~= ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[1], KEYS[2])
return 1
`)

type mfaRepo struct {
	rdb  redis.UniversalClient
	keys keyspace
}

func (r *mfaRepo) GetMFAState(ctx context.Context, account string, now time.Time) (domain.MFAState, error) {
	var (
		fields *redis.SliceCmd
		count  *redis.IntCmd
	)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HMGet(ctx, r.keys.mfa(account), "enabled", "secret", "candidate", "candidate_expires_at")
		count = pipe.SCard(ctx, r.keys.codes(account))
		return nil
	})
	if err != nil {
		return domain.MFAState{}, err
	}

	vals := fields.Val()
	str := func(i int) string {
		s, _ := vals[i].(string)
		return s
	}
	expires, _ := strconv.ParseInt(str(3), 10, 64)

	switch {
	case str(0) == "1":
		return domain.MFAState{
			Status:                 domain.MFAEnabled,
			Secret:                 str(1),
			RecoveryCodesRemaining: int(count.Val()),
		}, nil
	case str(2) != "" && expires > now.UnixMilli():
		return domain.MFAState{
			Status:             domain.MFAPending,
			CandidateSecret:    str(2),
			CandidateExpiresAt: time.UnixMilli(expires).UTC(),
		}, nil
	default:
		return domain.MFAState{Status: domain.MFADisabled}, nil
	}
}

func (r *mfaRepo) SetCandidateSecret(ctx context.Context, account, secret string, expiresAt time.Time) error {
	ok, err := setCandidateScript.Run(ctx, r.rdb,
		[]string{r.keys.mfa(account)}, secret, expiresAt.UnixMilli(),
	).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *mfaRepo) EnableMFA(ctx context.Context, account, secret string, codeHashes []string, now time.Time) error {
	args := make([]any, 0, len(codeHashes)+2)
	args = append(args, secret, now.UnixMilli())
	for _, h := range codeHashes {
		args = append(args, h)
	}

	res, err := enableScript.Run(ctx, r.rdb,
		[]string{r.keys.mfa(account), r.keys.codes(account)}, args...,
	).Int()
	if err != nil {
		return err
	}
	switch res {
	case -1:
		return store.ErrAlreadyExists
	case 0:
		return store.ErrPrecondition
	}
	return nil
}

func (r *mfaRepo) ReplaceRecoveryCodes(ctx context.Context, account, expectSecret string, codeHashes []string) error {
	args := make([]any, 0, len(codeHashes)+1)
	args = append(args, expectSecret)
	for _, h := range codeHashes {
		args = append(args, h)
	}

	ok, err := replaceCodesScript.Run(ctx, r.rdb,
		[]string{r.keys.mfa(account), r.keys.codes(account)}, args...,
	).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return store.ErrPrecondition
	}
	return nil
}

// ConsumeRecoveryCode relies on SREM reporting how many members it removed:
// of any number of concurrent callers exactly one sees 1.
func (r *mfaRepo) ConsumeRecoveryCode(ctx context.Context, account, codeHash string) (bool, error) {
	n, err := r.rdb.SRem(ctx, r.keys.codes(account), codeHash).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *mfaRepo) DisableMFA(ctx context.Context, account, expectSecret string) error {
	ok, err := disableScript.Run(ctx, r.rdb,
		[]string{r.keys.mfa(account), r.keys.codes(account)}, expectSecret,
	).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return store.ErrPrecondition
	}
	return nil
}

// DeleteExpiredCandidates is a no-op: candidate-only hashes carry their own
// key expiry.
func (r *mfaRepo) DeleteExpiredCandidates(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
