package mapping_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/transit/pkg/adapters/memory"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMapper() (*mapping.Mapper, *memory.MappingStore) {
	store := memory.NewMappingStore()
	types := mapping.StaticTypes{"ComponentInstance": "ComponentDef"}
	return mapping.New(store, types, "staging"), store
}

func TestGetOrCreateMapping_Idempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newMapper()

	first, err := m.GetOrCreateMapping(ctx, "12", "ComponentDef", "", "")
	require.NoError(t, err)
	second, err := m.GetOrCreateMapping(ctx, "12", "ComponentDef", "", "")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.False(t, first.Resolved())
}

func TestGetOrCreateMapping_RejectsEmptyKey(t *testing.T) {
	m, _ := newMapper()
	_, err := m.GetOrCreateMapping(context.Background(), "", "ComponentDef", "", "")
	assert.ErrorIs(t, err, domain.ErrIllegalArgument)
}

func TestSetTarget_PersistsThroughStore(t *testing.T) {
	ctx := context.Background()
	m, store := newMapper()

	created, err := m.GetOrCreateMapping(ctx, "12", "ComponentDef", "", "")
	require.NoError(t, err)
	require.NoError(t, m.SetTarget(ctx, created, "47"))

	stored, err := store.Load(ctx, domain.MappingKey{ObjectType: "ComponentDef", SourceID: "12"})
	require.NoError(t, err)
	assert.Equal(t, "47", stored.TargetID)
}

func TestPairIDTranslation(t *testing.T) {
	ctx := context.Background()
	m, _ := newMapper()

	parent, err := m.GetOrCreateMapping(ctx, "12", "ComponentDef", "", "")
	require.NoError(t, err)
	require.NoError(t, m.SetTarget(ctx, parent, "47"))

	found, err := m.GetIDMapping(ctx, "12:sidebar", "ComponentInstance")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Same(t, parent, found)

	target, err := m.GetTargetID(found, "12:sidebar")
	require.NoError(t, err)
	assert.Equal(t, "47:sidebar", target)

	viaHelper, err := m.TargetID(ctx, "12:sidebar", "ComponentInstance")
	require.NoError(t, err)
	assert.Equal(t, "47:sidebar", viaHelper)
}

func TestGetIDMapping_Absent(t *testing.T) {
	ctx := context.Background()
	m, _ := newMapper()

	found, err := m.GetIDMapping(ctx, "99", "ComponentDef")
	require.NoError(t, err)
	assert.Nil(t, found)

	same, err := m.TargetID(ctx, "99", "ComponentDef")
	require.NoError(t, err)
	assert.Equal(t, "99", same)
}

func TestGetIDMapping_MalformedPair(t *testing.T) {
	m, _ := newMapper()
	_, err := m.GetIDMapping(context.Background(), "sidebar", "ComponentInstance")
	assert.ErrorIs(t, err, domain.ErrWrongFormat)
}

func TestGetTargetIntID(t *testing.T) {
	ctx := context.Background()
	m, _ := newMapper()

	t.Run("numeric target", func(t *testing.T) {
		mp, err := m.GetOrCreateMapping(ctx, "12", "ComponentDef", "", "")
		require.NoError(t, err)
		require.NoError(t, m.SetTarget(ctx, mp, "47"))

		n, err := m.GetTargetIntID(mp, "12")
		require.NoError(t, err)
		assert.Equal(t, int64(47), n)
	})

	t.Run("non-numeric target", func(t *testing.T) {
		mp, err := m.GetOrCreateMapping(ctx, "13", "ComponentDef", "", "")
		require.NoError(t, err)
		require.NoError(t, m.SetTarget(ctx, mp, "abc"))

		_, err = m.GetTargetIntID(mp, "13")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidIDMappingTarget)

		var target *domain.InvalidIDMappingTargetError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, "staging", target.SourceServer)
		assert.Equal(t, "13", target.ID)
	})

	t.Run("unresolved target", func(t *testing.T) {
		mp, err := m.GetOrCreateMapping(ctx, "14", "ComponentDef", "", "")
		require.NoError(t, err)

		_, err = m.GetTargetIntID(mp, "14")
		assert.ErrorIs(t, err, domain.ErrInvalidIDMappingTarget)
	})

	t.Run("no mapping", func(t *testing.T) {
		n, err := m.GetTargetIntID(nil, "5")
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
	})
}

func TestSetTarget_RejectsEmpty(t *testing.T) {
	ctx := context.Background()
	m, _ := newMapper()

	mp, err := m.GetOrCreateMapping(ctx, "12", "ComponentDef", "", "")
	require.NoError(t, err)
	assert.ErrorIs(t, m.SetTarget(ctx, mp, ""), domain.ErrInvalidIDMappingTarget)
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	m, store := newMapper()

	_, err := m.GetOrCreateMapping(ctx, "12", "ComponentDef", "", "")
	require.NoError(t, err)
	require.NoError(t, m.Discard(ctx))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	found, err := m.GetIDMapping(ctx, "12", "ComponentDef")
	require.NoError(t, err)
	assert.Nil(t, found)
}
