package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// addTokenScript adds the entry, prunes anything already expired, and keeps
// the key alive until the latest expiry in the pool.
var addTokenScript = redis.NewScript(`
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[2])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[3])
redis.call('SADD', KEYS[2], ARGV[4])
local last = redis.call('ZRANGE', KEYS[1], -1, -1, 'WITHSCORES')
if last[2] then
	redis.call('PEXPIREAT', KEYS[1], last[2])
end
return 1
`)

type tokenPoolsRepo struct {
	rdb  redis.UniversalClient
	keys keyspace
}

func (r *tokenPoolsRepo) AddToken(ctx context.Context, account, audience, tokenID string, expiresAt time.Time) error {
	return addTokenScript.Run(ctx, r.rdb,
		[]string{r.keys.pool(account, audience), r.keys.pools(account)},
		expiresAt.UnixMilli(), tokenID, time.Now().UnixMilli(), audience,
	).Err()
}

func (r *tokenPoolsRepo) HasToken(ctx context.Context, account, audience, tokenID string, now time.Time) (bool, error) {
	score, err := r.rdb.ZScore(ctx, r.keys.pool(account, audience), tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return int64(score) > now.UnixMilli(), nil
}

func (r *tokenPoolsRepo) RemoveToken(ctx context.Context, account, audience, tokenID string) error {
	return r.rdb.ZRem(ctx, r.keys.pool(account, audience), tokenID).Err()
}

// DeleteExpiredTokens trims expired members from every pool. Whole pools
// already disappear through key expiry; this catches entries that expire
// before their siblings.
func (r *tokenPoolsRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	var (
		removed int64
		max     = "(" + strconv.FormatInt(now.UnixMilli()+1, 10)
	)
	iter := r.rdb.Scan(ctx, 0, r.keys.poolPattern(), 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.rdb.ZRemRangeByScore(ctx, iter.Val(), "-inf", max).Result()
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, iter.Err()
}
