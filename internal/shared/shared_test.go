package shared

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFromRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/distribution/orders", nil)
	r.Header.Set(ActorNameHeader, " somsak ")
	r.Header.Set(ActorBranchHeader, "2")
	r.Header.Set(ActorRoleHeader, "MANAGER")

	actor := ActorFromRequest(r)
	assert.Equal(t, "somsak", actor.Name)
	assert.Equal(t, int64(2), actor.BranchID)
	assert.True(t, actor.Manager)
}

func TestActorFromRequestDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/distribution/orders", nil)
	r.Header.Set(ActorRoleHeader, "cashier")
	r.Header.Set(ActorBranchHeader, "not-a-number")

	actor := ActorFromRequest(r)
	assert.Empty(t, actor.Name)
	assert.Zero(t, actor.BranchID)
	assert.False(t, actor.Manager)
}

func TestActorContextRoundTrip(t *testing.T) {
	actor := Actor{Name: "wipa", BranchID: 1}
	ctx := ContextWithActor(context.Background(), actor)
	assert.Equal(t, actor, ActorFromContext(ctx))
	assert.Equal(t, Actor{}, ActorFromContext(context.Background()))
}

func TestPagination(t *testing.T) {
	page := NewPagination(3, 20, 45)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 40, page.Offset())

	defaults := NewPagination(0, 0, 45)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 20, defaults.PerPage)
	assert.Equal(t, 0, defaults.Offset())
}

func TestFormatSequence(t *testing.T) {
	assert.Equal(t, "REQ-000123", FormatSequence("REQ", 123))
	assert.Equal(t, "IPS-000045", FormatSequence("IPS", 45))
	assert.Equal(t, "REQ-1000000", FormatSequence("REQ", 1000000))
}

func TestRedisLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	lock := NewRedisLock(client, time.Minute)
	ctx := context.Background()
	key := OrderLockKey(42)

	release, err := lock.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = lock.Acquire(ctx, key)
	assert.True(t, errors.Is(err, ErrLockHeld))

	release()
	release2, err := lock.Acquire(ctx, key)
	require.NoError(t, err)
	release2()
}

func TestRedisLockExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	lock := NewRedisLock(client, time.Second)
	ctx := context.Background()
	key := OrderLockKey(7)

	_, err := lock.Acquire(ctx, key)
	require.NoError(t, err)

	// a crashed holder must not wedge the order forever
	mr.FastForward(2 * time.Second)
	release, err := lock.Acquire(ctx, key)
	require.NoError(t, err)
	release()
}

func TestNilRedisLockIsNoop(t *testing.T) {
	var lock *RedisLock
	release, err := lock.Acquire(context.Background(), OrderLockKey(1))
	require.NoError(t, err)
	release()
}
