// Package redis implements the Credential Store on Redis.
//
// Layout, with the account name as a hash tag so every key of one account
// lands in the same cluster slot. u and aud are base64url-encoded (unpadded).
//
//	<prefix>account:{u}       hash   password_hash, created_at
//	<prefix>pools:{u}         set    audiences that have a pool (raw)
//	<prefix>pool:{u}:<aud>    zset   token id scored by expiry (unix ms)
//	<prefix>mfa:{u}           hash   enabled, secret, candidate, candidate_expires_at
//	<prefix>codes:{u}         set    recovery code fingerprints
//
// Conditional writes are Lua scripts so each is one atomic round trip.
package redis

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/store"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "usergate:"

type Options struct {
	Addr     string
	Password string
	DB       int

	// Timeout bounds dialing, reads and writes. A timed out call surfaces as
	// an error, never as a negative answer.
	Timeout time.Duration

	Prefix string
}

type Store struct {
	rdb    redis.UniversalClient
	keys   keyspace
	closer func() error
}

var _ store.Store = (*Store)(nil)

func NewStore(opts Options) *Store {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})
	s := NewStoreFromClient(rdb, opts.Prefix)
	s.closer = rdb.Close
	return s
}

// NewStoreFromClient wraps an existing client. Closing the store does not
// close the client.
func NewStoreFromClient(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, keys: keyspace(prefix)}
}

func (s *Store) Accounts() store.Accounts     { return &accountsRepo{rdb: s.rdb, keys: s.keys} }
func (s *Store) TokenPools() store.TokenPools { return &tokenPoolsRepo{rdb: s.rdb, keys: s.keys} }
func (s *Store) MFA() store.MFA               { return &mfaRepo{rdb: s.rdb, keys: s.keys} }

// ApplyMigrations is a no-op; Redis has no schema.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// keyspace builds every key of the driver. Segments are encoded so no
// username or audience can contain the '{', '}' or ':' separators.
type keyspace string

func seg(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

func (k keyspace) account(u string) string   { return string(k) + "account:{" + seg(u) + "}" }
func (k keyspace) pools(u string) string     { return string(k) + "pools:{" + seg(u) + "}" }
func (k keyspace) pool(u, aud string) string { return string(k) + "pool:{" + seg(u) + "}:" + seg(aud) }
func (k keyspace) poolPattern() string       { return string(k) + "pool:*" }
func (k keyspace) mfa(u string) string       { return string(k) + "mfa:{" + seg(u) + "}" }
func (k keyspace) codes(u string) string     { return string(k) + "codes:{" + seg(u) + "}" }

func mapNotFound(err error) error {
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	return err
}
