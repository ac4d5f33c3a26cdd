package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "session:revoked:"

var client *redis.Client

// Init connects to Redis. On failure the client stays nil and every helper
// degrades to a no-op.
func Init(addr, password string) error {
	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client, nil when unavailable.
func GetClient() *redis.Client {
	return client
}

// Close releases the connection.
func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

func tokenKey(token string) string {
	h := sha256.Sum256([]byte(token))
	return revokedPrefix + hex.EncodeToString(h[:])[:32]
}

// RevokeToken marks a session token revoked until it would have expired.
// Returns false when Redis is not available.
func RevokeToken(ctx context.Context, token string, ttl time.Duration) bool {
	if client == nil || ttl <= 0 {
		return false
	}
	return client.Set(ctx, tokenKey(token), 1, ttl).Err() == nil
}

// IsRevoked reports whether the token was revoked on any instance.
func IsRevoked(ctx context.Context, token string) bool {
	if client == nil {
		return false
	}
	n, err := client.Exists(ctx, tokenKey(token)).Result()
	return err == nil && n > 0
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
