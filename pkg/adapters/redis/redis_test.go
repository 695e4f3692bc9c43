package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/transit/pkg/adapters/redis"
	"github.com/aretw0/transit/pkg/domain"
	contract "github.com/aretw0/transit/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestMappingStore_Contract(t *testing.T) {
	_, client := setup(t)
	contract.RunMappingStoreContract(t, redis.NewMappingStore(client, "op-1"))
}

func TestTransactionLog_Contract(t *testing.T) {
	_, client := setup(t)
	contract.RunTransactionLogContract(t, redis.NewTransactionLog(client, "op-1"))
}

func TestMappingStore_OperationsAreIsolated(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	a := redis.NewMappingStore(client, "op-a")
	b := redis.NewMappingStore(client, "op-b")

	require.NoError(t, a.Save(ctx, domain.IDMapping{ObjectType: "ComponentDef", SourceID: "12", TargetID: "47"}))

	_, err := b.Load(ctx, domain.MappingKey{ObjectType: "ComponentDef", SourceID: "12"})
	assert.ErrorIs(t, err, domain.ErrMappingNotFound)
}

func TestMappingStore_PrefixAndTTL(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()

	store := redis.NewMappingStore(client, "op-ttl", redis.WithPrefix("custom:"), redis.WithTTL(time.Second))
	require.NoError(t, store.Save(ctx, domain.IDMapping{ObjectType: "Template", SourceID: "7", TargetID: "70"}))

	assert.True(t, mr.Exists("custom:mappings:op-ttl"))

	mr.FastForward(2 * time.Second)

	_, err := store.Load(ctx, domain.MappingKey{ObjectType: "Template", SourceID: "7"})
	assert.ErrorIs(t, err, domain.ErrMappingNotFound)
}

func TestLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "target-a", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:target-a"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:target-a"))
}

func TestLocker_Contention(t *testing.T) {
	mr, client := setup(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	_, err = locker2.Lock(ctxTimeout, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock2(ctx) }()

	assert.True(t, mr.Exists("test:lock:shared"))
}

func TestJournals_ListAndRead(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	dep := domain.Dependency{Type: "Layout", ID: "7", DisplayName: "home"}
	require.NoError(t, redis.NewTransactionLog(client, "op-b").Append(ctx, domain.NewLogEntry(dep, domain.ActionCreated)))
	require.NoError(t, redis.NewTransactionLog(client, "op-a").Append(ctx, domain.NewLogEntry(dep, domain.ActionModified)))
	require.NoError(t, redis.NewMappingStore(client, "op-a").Save(ctx, domain.IDMapping{ObjectType: "Layout", SourceID: "7"}))

	j := redis.NewJournals(client)
	ids, err := j.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"op-a", "op-b"}, ids)

	entries, err := j.Read(ctx, "op-a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionModified, entries[0].Action)

	_, err = j.Read(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrJournalNotFound)
}
