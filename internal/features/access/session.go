package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-marketplace/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStore keeps server-side admin sessions.
type SessionStore interface {
	Create(ctx context.Context, adminID primitive.ObjectID) (string, error)
	// Lookup returns ErrInvalidCredential for unknown or expired sessions.
	Lookup(ctx context.Context, sessionID string) (primitive.ObjectID, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeAll(ctx context.Context, adminID primitive.ObjectID) error
}

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, cfg *config.Config) SessionStore {
	return &RedisSessionStore{client: client, ttl: cfg.SessionTTL}
}

func (s *RedisSessionStore) Create(ctx context.Context, adminID primitive.ObjectID) (string, error) {
	id := uuid.NewString()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(id), adminID.Hex(), s.ttl)
	pipe.SAdd(ctx, adminSessionsKey(adminID), id)
	pipe.Expire(ctx, adminSessionsKey(adminID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, sessionID string) (primitive.ObjectID, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return primitive.NilObjectID, ErrInvalidCredential
	}

	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return primitive.NilObjectID, ErrInvalidCredential
		}
		return primitive.NilObjectID, err
	}

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidCredential
	}
	return id, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	raw, err := s.client.GetDel(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if id, err := primitive.ObjectIDFromHex(raw); err == nil {
		s.client.SRem(ctx, adminSessionsKey(id), sessionID)
	}
	return nil
}

func (s *RedisSessionStore) RevokeAll(ctx context.Context, adminID primitive.ObjectID) error {
	ids, err := s.client.SMembers(ctx, adminSessionsKey(adminID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, adminSessionsKey(adminID))
	return s.client.Del(ctx, keys...).Err()
}

func sessionKey(id string) string {
	return "admin_session:" + id
}

func adminSessionsKey(adminID primitive.ObjectID) string {
	return "admin_sessions:" + adminID.Hex()
}
