package repositories_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/models"
	"github.com/rohits-web03/cloudvault/internal/repositories"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repositories.Open("sqlite://file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:     uuid.NewString() + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
	}
	require.NoError(t, repositories.NewUserRepository(db).Create(context.Background(), user))
	return user
}

func TestFolderRepository_SiblingUniqueness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	folders := repositories.NewFolderRepository(db)
	owner := createUser(t, db)
	other := createUser(t, db)

	root := &models.Folder{Name: "Docs", OwnerID: owner.ID, Path: "/Docs"}
	require.NoError(t, folders.Create(ctx, root))

	t.Run("duplicate root name is a conflict", func(t *testing.T) {
		err := folders.Create(ctx, &models.Folder{Name: "Docs", OwnerID: owner.ID})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("same root name for another owner is fine", func(t *testing.T) {
		err := folders.Create(ctx, &models.Folder{Name: "Docs", OwnerID: other.ID})
		assert.NoError(t, err)
	})

	t.Run("duplicate nested name is a conflict", func(t *testing.T) {
		require.NoError(t, folders.Create(ctx, &models.Folder{Name: "2024", ParentID: &root.ID, OwnerID: owner.ID}))
		err := folders.Create(ctx, &models.Folder{Name: "2024", ParentID: &root.ID, OwnerID: owner.ID})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("sibling check", func(t *testing.T) {
		exists, err := folders.SiblingExists(ctx, owner.ID, nil, "Docs", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = folders.SiblingExists(ctx, owner.ID, nil, "Docs", root.ID)
		require.NoError(t, err)
		assert.False(t, exists, "a folder is not its own sibling")

		exists, err = folders.SiblingExists(ctx, owner.ID, &root.ID, "Docs", uuid.Nil)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestFolderRepository_ScopedToOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	folders := repositories.NewFolderRepository(db)
	owner := createUser(t, db)
	stranger := createUser(t, db)

	folder := &models.Folder{Name: "Private", OwnerID: owner.ID}
	require.NoError(t, folders.Create(ctx, folder))

	_, err := folders.FindByID(ctx, stranger.ID, folder.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = folders.Rename(ctx, stranger.ID, folder.ID, "Mine")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleted, err := folders.Delete(ctx, stranger.ID, folder.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	found, err := folders.FindByID(ctx, owner.ID, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private", found.Name)
}

func TestFolderRepository_Children(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	folders := repositories.NewFolderRepository(db)
	files := repositories.NewFileRepository(db)
	owner := createUser(t, db)

	parent := &models.Folder{Name: "A", OwnerID: owner.ID}
	require.NoError(t, folders.Create(ctx, parent))

	has, err := folders.HasChildren(ctx, owner.ID, parent.ID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, folders.Create(ctx, &models.Folder{Name: "B", ParentID: &parent.ID, OwnerID: owner.ID}))
	require.NoError(t, files.Create(ctx, &models.File{
		Name: "x.txt", OriginalName: "x.txt", BlobID: "k1", BlobLocation: "https://blob/k1",
		MimeType: "text/plain", Size: 3, FolderID: &parent.ID, OwnerID: owner.ID,
	}))

	has, err = folders.HasChildren(ctx, owner.ID, parent.ID)
	require.NoError(t, err)
	assert.True(t, has)

	children, err := folders.ListChildren(ctx, owner.ID, &parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "B", children[0].Name)

	roots, err := folders.ListChildren(ctx, owner.ID, nil)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "A", roots[0].Name)

	n, err := files.CountInFolder(ctx, owner.ID, parent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	atRoot, err := files.ListInFolder(ctx, owner.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, atRoot)
}

func TestFolderRepository_ParentMustExist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	folders := repositories.NewFolderRepository(db)
	files := repositories.NewFileRepository(db)
	owner := createUser(t, db)
	missing := uuid.New()

	t.Run("folder under a missing parent", func(t *testing.T) {
		err := folders.Create(ctx, &models.Folder{Name: "B", ParentID: &missing, OwnerID: owner.ID})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("file in a missing folder", func(t *testing.T) {
		err := files.Create(ctx, &models.File{
			Name: "x.txt", OriginalName: "x.txt", BlobID: uuid.NewString(), BlobLocation: "loc",
			MimeType: "text/plain", Size: 1, FolderID: &missing, OwnerID: owner.ID,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("folder with a child cannot be deleted", func(t *testing.T) {
		parent := &models.Folder{Name: "A", OwnerID: owner.ID}
		require.NoError(t, folders.Create(ctx, parent))
		require.NoError(t, folders.Create(ctx, &models.Folder{Name: "B", ParentID: &parent.ID, OwnerID: owner.ID}))

		deleted, err := folders.Delete(ctx, owner.ID, parent.ID)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.False(t, deleted)

		_, err = folders.FindByID(ctx, owner.ID, parent.ID)
		assert.NoError(t, err)
	})
}

func TestUserRepository_Storage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	users := repositories.NewUserRepository(db)
	files := repositories.NewFileRepository(db)
	user := createUser(t, db)

	require.NoError(t, users.AdjustStorage(ctx, user.ID, 100))
	require.NoError(t, users.AdjustStorage(ctx, user.ID, -30))
	used, err := users.StorageUsed(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 70, used)

	t.Run("never drops below zero", func(t *testing.T) {
		require.NoError(t, users.AdjustStorage(ctx, user.ID, -1000))
		used, err := users.StorageUsed(ctx, user.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, used)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := users.AdjustStorage(ctx, uuid.New(), 10)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("recompute from files", func(t *testing.T) {
		for i, size := range []int64{10, 20, 30} {
			require.NoError(t, files.Create(ctx, &models.File{
				Name: "f", OriginalName: "f", BlobID: uuid.NewString(), BlobLocation: "loc",
				MimeType: "text/plain", Size: size, OwnerID: user.ID, Path: "/",
			}), "file %d", i)
		}
		require.NoError(t, users.RecomputeStorage(ctx, user.ID))
		used, err := users.StorageUsed(ctx, user.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 60, used)
	})
}

func TestUserRepository_EmailIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	users := repositories.NewUserRepository(db)

	require.NoError(t, users.Create(ctx, &models.User{Email: "Jane@Example.com", FirstName: "Jane"}))

	found, err := users.FindByEmail(ctx, "jane@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", found.Email)

	err = users.Create(ctx, &models.User{Email: "JANE@example.com", FirstName: "Other"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	ids, err := users.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{found.ID}, ids)
}

func TestOrphanBlobRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	orphans := repositories.NewOrphanBlobRepository(db)
	owner := uuid.New()

	require.NoError(t, orphans.Record(ctx, &models.OrphanBlob{BlobID: "a", OwnerID: owner, FileID: uuid.New(), LastError: "timeout"}))
	require.NoError(t, orphans.Record(ctx, &models.OrphanBlob{BlobID: "a", OwnerID: owner, FileID: uuid.New(), LastError: "503"}))
	require.NoError(t, orphans.Record(ctx, &models.OrphanBlob{BlobID: "b", OwnerID: owner, FileID: uuid.New(), LastError: "timeout"}))

	pending, err := orphans.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	byBlob := map[string]models.OrphanBlob{}
	for _, o := range pending {
		byBlob[o.BlobID] = o
	}
	assert.Equal(t, 2, byBlob["a"].Attempts)
	assert.Equal(t, "503", byBlob["a"].LastError)
	assert.Equal(t, 1, byBlob["b"].Attempts)

	require.NoError(t, orphans.MarkFailed(ctx, byBlob["b"].ID, "still down"))
	require.NoError(t, orphans.Delete(ctx, byBlob["a"].ID))

	pending, err = orphans.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].BlobID)
	assert.Equal(t, 2, pending[0].Attempts)
	assert.Equal(t, "still down", pending[0].LastError)
}

func TestTxManager(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	tx := repositories.NewTxManager(db)
	folders := repositories.NewFolderRepository(db)
	owner := createUser(t, db)

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			require.NoError(t, folders.Create(ctx, &models.Folder{Name: "Gone", OwnerID: owner.ID}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		exists, err := folders.SiblingExists(ctx, owner.ID, nil, "Gone", uuid.Nil)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			return tx.WithinTx(ctx, func(ctx context.Context) error {
				return folders.Create(ctx, &models.Folder{Name: "Kept", OwnerID: owner.ID})
			})
		})
		require.NoError(t, err)

		exists, err := folders.SiblingExists(ctx, owner.ID, nil, "Kept", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("domain errors pass through", func(t *testing.T) {
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := folders.FindByID(ctx, owner.ID, uuid.New())
			return err
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
