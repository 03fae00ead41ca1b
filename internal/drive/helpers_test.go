package drive_test

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/drive"
	"github.com/rohits-web03/cloudvault/internal/models"
	"github.com/rohits-web03/cloudvault/internal/repositories"
)

var errBlobDown = fmt.Errorf("%w: simulated outage", domain.ErrBlobStore)

// memoryBlobStore keeps blobs in a map. Each operation can be switched to fail.
type memoryBlobStore struct {
	mu          sync.Mutex
	blobs       map[string][]byte
	failPut     bool
	failDelete  bool
	failPresign bool
	deletes     int
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{blobs: map[string][]byte{}}
}

func (s *memoryBlobStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (models.BlobRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return models.BlobRef{}, errBlobDown
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return models.BlobRef{}, err
	}
	s.blobs[key] = data
	return models.BlobRef{ID: key, Location: "https://blobs.test/" + key}, nil
}

func (s *memoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.failDelete {
		return errBlobDown
	}
	delete(s.blobs, key)
	return nil
}

func (s *memoryBlobStore) PresignGet(_ context.Context, key string, expires time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPresign {
		return "", errBlobDown
	}
	if _, ok := s.blobs[key]; !ok {
		return "", fs.ErrNotExist
	}
	return fmt.Sprintf("https://signed.test/%s?expires=%d", key, int(expires.Seconds())), nil
}

func (s *memoryBlobStore) setFailDelete(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete = fail
}

func (s *memoryBlobStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok
}

func (s *memoryBlobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

type testEnv struct {
	db      *gorm.DB
	blobs   *memoryBlobStore
	deps    drive.Deps
	manager *drive.Manager
	users   *repositories.UserRepository
}

func newTestEnv(t *testing.T, opts drive.Options) *testEnv {
	t.Helper()
	db, err := repositories.Open("sqlite://file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	blobs := newMemoryBlobStore()
	users := repositories.NewUserRepository(db)
	deps := drive.Deps{
		Folders: repositories.NewFolderRepository(db),
		Files:   repositories.NewFileRepository(db),
		Users:   users,
		Orphans: repositories.NewOrphanBlobRepository(db),
		Blobs:   blobs,
		Tx:      repositories.NewTxManager(db),
	}
	return &testEnv{
		db:      db,
		blobs:   blobs,
		deps:    deps,
		manager: drive.NewManager(deps, opts, discardLogger()),
		users:   users,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (e *testEnv) user(t *testing.T) uuid.UUID {
	t.Helper()
	user := &models.User{Email: uuid.NewString() + "@example.com", FirstName: "Test", IsActive: true}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user.ID
}

func (e *testEnv) folder(t *testing.T, owner uuid.UUID, parent *uuid.UUID, name string) *models.Folder {
	t.Helper()
	folder, err := e.manager.CreateFolder(context.Background(), owner, drive.CreateFolderInput{Name: name, ParentID: parent})
	require.NoError(t, err)
	return folder
}

func (e *testEnv) upload(t *testing.T, owner uuid.UUID, folder *uuid.UUID, name, content string) *models.File {
	t.Helper()
	file, err := e.manager.UploadFile(context.Background(), owner, drive.UploadInput{
		Name:        name,
		ContentType: "text/plain",
		Size:        int64(len(content)),
		Body:        strings.NewReader(content),
		FolderID:    folder,
	})
	require.NoError(t, err)
	return file
}

func (e *testEnv) storageUsed(t *testing.T, owner uuid.UUID) int64 {
	t.Helper()
	used, err := e.users.StorageUsed(context.Background(), owner)
	require.NoError(t, err)
	return used
}

func (e *testEnv) countRows(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
