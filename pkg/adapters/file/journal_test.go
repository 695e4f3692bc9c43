package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/transit/pkg/adapters/file"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_Contract(t *testing.T) {
	j, err := file.NewJournal(t.TempDir(), "op-1")
	require.NoError(t, err)
	tests.RunTransactionLogContract(t, j)
}

func TestJournal_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	j, err := file.NewJournal(dir, "op-2")
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, domain.NewLogEntry(domain.Dependency{Type: "Template", ID: "3", DisplayName: "Two columns"}, domain.ActionCreated)))

	reopened, err := file.NewJournal(dir, "op-2")
	require.NoError(t, err)
	entries, err := reopened.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Two columns", entries[0].ElementName)
	assert.Equal(t, filepath.Join(dir, "op-2.jsonl"), reopened.Path())
}

func TestJournal_EmptyBeforeFirstAppend(t *testing.T) {
	j, err := file.NewJournal(t.TempDir(), "fresh")
	require.NoError(t, err)

	entries, err := j.Entries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournal_RejectsBadOperationID(t *testing.T) {
	for _, id := range []string{"", "..", "a/b", `a\b`} {
		_, err := file.NewJournal(t.TempDir(), id)
		assert.ErrorIs(t, err, domain.ErrIllegalArgument, "id %q", id)
	}
}

func TestJournal_CorruptLine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.jsonl"), []byte("{\"action\":\"created\"}\nnot json\n"), 0644))

	j, err := file.NewJournal(dir, "bad")
	require.NoError(t, err)
	_, err = j.Entries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	d := file.NewDirectory(dir)

	ids, err := d.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, id := range []string{"b-op", "a-op"} {
		j, err := d.Journal(id)
		require.NoError(t, err)
		require.NoError(t, j.Append(ctx, domain.NewLogEntry(domain.Dependency{Type: "Role", ID: "editor"}, domain.ActionCreated)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	ids, err = d.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a-op", "b-op"}, ids)

	entries, err := d.Read(ctx, "a-op")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = d.Read(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrJournalNotFound)
}

func TestDirectory_MissingBasePath(t *testing.T) {
	d := file.NewDirectory(filepath.Join(t.TempDir(), "nope"))
	ids, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
