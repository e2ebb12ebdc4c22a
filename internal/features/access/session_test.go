package access

import (
	"context"
	"testing"
	"time"

	"go-marketplace/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRedisStore(t *testing.T) (*miniredis.Miniredis, SessionStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisSessionStore(client, &config.Config{SessionTTL: time.Hour})
}

func TestRedisSessionLifecycle(t *testing.T) {
	_, store := newRedisStore(t)
	ctx := context.Background()
	adminID := primitive.NewObjectID()

	sid, err := store.Create(ctx, adminID)
	require.NoError(t, err)

	got, err := store.Lookup(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, adminID, got)

	require.NoError(t, store.Revoke(ctx, sid))
	_, err = store.Lookup(ctx, sid)
	assert.ErrorIs(t, err, ErrInvalidCredential)

	assert.NoError(t, store.Revoke(ctx, sid))
}

func TestRedisSessionExpires(t *testing.T) {
	mr, store := newRedisStore(t)
	ctx := context.Background()

	sid, err := store.Create(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Lookup(ctx, sid)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestRedisSessionRejectsMalformedID(t *testing.T) {
	_, store := newRedisStore(t)

	_, err := store.Lookup(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestRedisSessionRevokeAll(t *testing.T) {
	_, store := newRedisStore(t)
	ctx := context.Background()
	adminID := primitive.NewObjectID()
	other := primitive.NewObjectID()

	s1, _ := store.Create(ctx, adminID)
	s2, _ := store.Create(ctx, adminID)
	s3, _ := store.Create(ctx, other)

	require.NoError(t, store.RevokeAll(ctx, adminID))

	for _, sid := range []string{s1, s2} {
		_, err := store.Lookup(ctx, sid)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	}
	got, err := store.Lookup(ctx, s3)
	require.NoError(t, err)
	assert.Equal(t, other, got)
}

func TestRedisSessionOutage(t *testing.T) {
	mr, store := newRedisStore(t)
	ctx := context.Background()
	sid, err := store.Create(ctx, primitive.NewObjectID())
	require.NoError(t, err)

	mr.Close()

	_, err = store.Lookup(ctx, sid)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
}
