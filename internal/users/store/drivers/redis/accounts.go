package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/domain"
	"github.com/aussiebroadwan/usergate/internal/users/store"
	"github.com/redis/go-redis/v9"
)

var createAccountScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'password_hash', ARGV[1], 'created_at', ARGV[2])
return 1
`)

var updatePasswordScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'password_hash', ARGV[1])
return 1
`)

type accountsRepo struct {
	rdb  redis.UniversalClient
	keys keyspace
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	ok, err := createAccountScript.Run(ctx, r.rdb,
		[]string{r.keys.account(a.Username)},
		a.PasswordHash, a.CreatedAt.UnixMilli(),
	).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *accountsRepo) GetAccount(ctx context.Context, username string) (domain.Account, error) {
	vals, err := r.rdb.HMGet(ctx, r.keys.account(username), "password_hash", "created_at").Result()
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	hash, _ := vals[0].(string)
	if hash == "" {
		return domain.Account{}, store.ErrNotFound
	}
	a := domain.Account{Username: username, PasswordHash: hash}
	if s, ok := vals[1].(string); ok {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms != 0 {
			a.CreatedAt = time.UnixMilli(ms).UTC()
		}
	}
	return a, nil
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, username string, newHash string) error {
	ok, err := updatePasswordScript.Run(ctx, r.rdb,
		[]string{r.keys.account(username)}, newHash,
	).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, username string) error {
	audiences, err := r.rdb.SMembers(ctx, r.keys.pools(username)).Result()
	if err != nil {
		return err
	}

	keys := []string{
		r.keys.mfa(username),
		r.keys.codes(username),
		r.keys.pools(username),
	}
	for _, aud := range audiences {
		keys = append(keys, r.keys.pool(username, aud))
	}

	var deleted *redis.IntCmd
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, r.keys.account(username))
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return err
	}
	if deleted.Val() == 0 {
		return store.ErrNotFound
	}
	return nil
}
