package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/txledger/internal/domain"
)

func TestFileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(Standard, zerolog.Nop())
	path := filepath.Join(t.TempDir(), "alice.csv")
	acc := sampleAccount(t)

	assert.False(t, store.Exists(path))
	require.NoError(t, store.Save(ctx, path, acc))
	assert.True(t, store.Exists(path))

	txs, err := store.Load(ctx, path, "Alice", "IT0001")
	require.NoError(t, err)
	assert.Len(t, txs, acc.Len())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(Excel, zerolog.Nop())
	path := filepath.Join(t.TempDir(), "alice.csv")

	require.NoError(t, store.Save(ctx, path, sampleAccount(t)))
	require.NoError(t, store.Save(ctx, path, domain.NewAccount("Alice", "IT0001", "pwdA")))

	txs, err := store.Load(ctx, path, "Alice", "IT0001")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestFileStore_IOErrors(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(Standard, zerolog.Nop())
	dir := t.TempDir()

	_, err := store.Load(ctx, filepath.Join(dir, "missing.csv"), "Alice", "IT0001")
	require.ErrorIs(t, err, domain.ErrIO)
	require.ErrorIs(t, err, os.ErrNotExist)

	err = store.Save(ctx, filepath.Join(dir, "no", "such", "dir.csv"), sampleAccount(t))
	require.ErrorIs(t, err, domain.ErrIO)
}

func TestFileStore_LoadMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(Standard, zerolog.Nop())
	path := filepath.Join(t.TempDir(), "alice.csv")
	require.NoError(t, store.Save(ctx, path, sampleAccount(t)))

	_, err := store.Load(ctx, path, "Bob", "IT0001")
	require.ErrorIs(t, err, domain.ErrMismatch)
	assert.NotErrorIs(t, err, domain.ErrIO)
}
