package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/mapty/internal/persistence"
)

func TestStoreSetGetRemove(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "nested"))
	require.NoError(t, err)

	_, err = store.Get(ctx, "workouts")
	require.ErrorIs(t, err, persistence.ErrNotFound)

	require.NoError(t, store.Set(ctx, "workouts", `[1]`))
	require.NoError(t, store.Set(ctx, "workouts", `[2]`))

	value, err := store.Get(ctx, "workouts")
	require.NoError(t, err)
	require.Equal(t, `[2]`, value)

	_, err = os.Stat(filepath.Join(dir, "nested", "workouts.json.tmp"))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, store.Remove(ctx, "workouts"))
	require.NoError(t, store.Remove(ctx, "workouts"))
	_, err = store.Get(ctx, "workouts")
	require.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestStoreRejectsPathKeys(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.Error(t, store.Set(context.Background(), "../escape", "x"))
}
