package drive_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/cloudvault/internal/drive"
	"github.com/rohits-web03/cloudvault/internal/models"
)

func TestReconciler_RetryOrphans(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, drive.Options{})
	owner := env.user(t)
	reconciler := drive.NewReconciler(env.deps, drive.Options{}, time.Minute, discardLogger())

	a := env.folder(t, owner, nil, "A")
	f1 := env.upload(t, owner, &a.ID, "1.txt", "one")
	f2 := env.upload(t, owner, &a.ID, "2.txt", "two")
	env.blobs.setFailDelete(true)
	_, err := env.manager.DeleteFolder(ctx, owner, a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, env.countRows(t, &models.OrphanBlob{}, "owner_id = ?", owner))

	t.Run("store still down", func(t *testing.T) {
		report, err := reconciler.RetryOrphans(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Removed)
		assert.Equal(t, 2, report.Failed)

		var orphan models.OrphanBlob
		require.NoError(t, env.db.Where("blob_id = ?", f1.BlobID).First(&orphan).Error)
		assert.Equal(t, 2, orphan.Attempts)
	})

	t.Run("store recovered", func(t *testing.T) {
		env.blobs.setFailDelete(false)
		report, err := reconciler.RetryOrphans(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Removed)
		assert.Zero(t, report.Failed)

		assert.Zero(t, env.countRows(t, &models.OrphanBlob{}, "owner_id = ?", owner))
		assert.False(t, env.blobs.has(f1.BlobID))
		assert.False(t, env.blobs.has(f2.BlobID))
	})
}

func TestReconciler_RecomputeStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t, drive.Options{})
	reconciler := drive.NewReconciler(env.deps, drive.Options{}, time.Minute, discardLogger())

	alice := env.user(t)
	bob := env.user(t)
	env.upload(t, alice, nil, "a.txt", "12345")
	env.upload(t, bob, nil, "b.txt", "12")

	// Drift both counters away from the truth.
	require.NoError(t, env.users.AdjustStorage(ctx, alice, 1000))
	require.NoError(t, env.users.AdjustStorage(ctx, bob, -2))

	require.NoError(t, reconciler.RecomputeStorage(ctx, alice))
	assert.EqualValues(t, 5, env.storageUsed(t, alice))
	assert.Zero(t, env.storageUsed(t, bob))

	require.NoError(t, reconciler.RecomputeAll(ctx))
	assert.EqualValues(t, 5, env.storageUsed(t, alice))
	assert.EqualValues(t, 2, env.storageUsed(t, bob))
}

func TestReconciler_RunStopsWithContext(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, drive.Options{})
	reconciler := drive.NewReconciler(env.deps, drive.Options{}, 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reconciler.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reconciler did not stop")
	}
}
