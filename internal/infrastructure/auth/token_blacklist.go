package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist rejects JWTs before they expire. RevokeToken drops one
// token by its JTI on logout. RevokeUser drops every token issued to a
// user so far, e.g. after a password change.
type TokenBlacklist interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

var (
	_ TokenBlacklist = (*RedisTokenBlacklist)(nil)
	_ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
)

const blacklistPrefix = "backoffice:token:"

func jtiKey(jti string) string     { return blacklistPrefix + "jti:" + jti }
func userKey(userID string) string { return blacklistPrefix + "user:" + userID }

// RedisTokenBlacklist shares revocations between API instances. Keys
// expire with the tokens they cover.
type RedisTokenBlacklist struct {
	client redis.UniversalClient
}

func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func (b *RedisTokenBlacklist) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, jtiKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return n > 0, nil
}

// RevokeUser stores the revocation second. JWT issue times have second
// precision, so a token issued in that same second is revoked too.
func (b *RedisTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	revokedAt, err := b.client.Get(ctx, userKey(userID)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("check user revocation: %w", err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

// InMemoryTokenBlacklist is the single-instance fallback when redis is off.
type InMemoryTokenBlacklist struct {
	mu sync.Mutex
	// entries maps a key to when it was revoked and when it stops mattering
	entries map[string]revocation
}

type revocation struct {
	at, until time.Time
}

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{entries: make(map[string]revocation)}
}

func (b *InMemoryTokenBlacklist) put(key string, ttl time.Duration) {
	now := time.Now()
	r := revocation{at: now}
	if ttl > 0 {
		r.until = now.Add(ttl)
	}
	b.mu.Lock()
	b.entries[key] = r
	b.mu.Unlock()
}

// lookup returns the live revocation for key, forgetting it once expired.
func (b *InMemoryTokenBlacklist) lookup(key string) (revocation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.entries[key]
	if ok && !r.until.IsZero() && time.Now().After(r.until) {
		delete(b.entries, key)
		return revocation{}, false
	}
	return r, ok
}

func (b *InMemoryTokenBlacklist) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		b.put(jtiKey(jti), ttl)
	}
	return nil
}

func (b *InMemoryTokenBlacklist) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := b.lookup(jtiKey(jti))
	return ok, nil
}

// RevokeUser keeps the revocation forever when ttl is zero.
func (b *InMemoryTokenBlacklist) RevokeUser(_ context.Context, userID string, ttl time.Duration) error {
	b.put(userKey(userID), ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	r, ok := b.lookup(userKey(userID))
	return ok && !issuedAt.After(r.at), nil
}
