package tests

import (
	"context"
	"testing"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunMappingStoreContract runs a suite of tests to verify that a MappingStore implementation
// adheres to the defined interface contract. The store must be empty.
func RunMappingStoreContract(t *testing.T, store ports.MappingStore) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		m := domain.IDMapping{ObjectType: "ComponentDef", SourceID: "12", TargetID: "47"}
		require.NoError(t, store.Save(ctx, m))

		loaded, err := store.Load(ctx, m.Key())
		require.NoError(t, err)
		assert.Equal(t, m, loaded)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		m := domain.IDMapping{ObjectType: "Template", SourceID: "7"}
		require.NoError(t, store.Save(ctx, m))

		m.TargetID = "70"
		require.NoError(t, store.Save(ctx, m))

		loaded, err := store.Load(ctx, m.Key())
		require.NoError(t, err)
		assert.Equal(t, "70", loaded.TargetID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, domain.MappingKey{ObjectType: "Nope", SourceID: "1"})
		assert.ErrorIs(t, err, domain.ErrMappingNotFound)
	})

	t.Run("Keys are scoped by type", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.IDMapping{ObjectType: "A", SourceID: "1", TargetID: "a"}))
		require.NoError(t, store.Save(ctx, domain.IDMapping{ObjectType: "B", SourceID: "1", TargetID: "b"}))

		a, err := store.Load(ctx, domain.MappingKey{ObjectType: "A", SourceID: "1"})
		require.NoError(t, err)
		b, err := store.Load(ctx, domain.MappingKey{ObjectType: "B", SourceID: "1"})
		require.NoError(t, err)
		assert.Equal(t, "a", a.TargetID)
		assert.Equal(t, "b", b.TargetID)
	})

	t.Run("List and Discard", func(t *testing.T) {
		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, all)

		require.NoError(t, store.Discard(ctx))

		all, err = store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		_, err = store.Load(ctx, domain.MappingKey{ObjectType: "ComponentDef", SourceID: "12"})
		assert.ErrorIs(t, err, domain.ErrMappingNotFound)
	})
}

// RunTransactionLogContract verifies append-only ordering of a TransactionLog.
// The log must be empty.
func RunTransactionLogContract(t *testing.T, log ports.TransactionLog) {
	ctx := context.Background()

	first := domain.NewLogEntry(domain.Dependency{Type: "FolderDef", ID: "/Site"}, domain.ActionCreated)
	second := domain.NewLogEntry(domain.Dependency{Type: "FolderContents", ID: "/Site"}, domain.ActionModified)

	require.NoError(t, log.Append(ctx, first))
	require.NoError(t, log.Append(ctx, second))

	entries, err := log.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "FolderDef", entries[0].ElementType)
	assert.Equal(t, domain.ActionCreated, entries[0].Action)
	assert.Equal(t, "FolderContents", entries[1].ElementType)
	assert.Equal(t, domain.ActionModified, entries[1].Action)

	// Callers must not be able to rewrite history through the returned slice.
	entries[0].Action = domain.ActionDeleted
	again, err := log.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionCreated, again[0].Action)
}
