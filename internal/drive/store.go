package drive

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/cloudvault/internal/models"
)

// FolderStore persists folders. Implementations must enforce sibling name
// uniqueness and return domain errors.
type FolderStore interface {
	Create(ctx context.Context, folder *models.Folder) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Folder, error)
	SiblingExists(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
	ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]models.Folder, error)
	HasChildren(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	Rename(ctx context.Context, ownerID, id uuid.UUID, name string) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
}

type FileStore interface {
	Create(ctx context.Context, file *models.File) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.File, error)
	ListInFolder(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]models.File, error)
	CountInFolder(ctx context.Context, ownerID, folderID uuid.UUID) (int64, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
}

// UserStore is the storage counter side of the user table.
type UserStore interface {
	AdjustStorage(ctx context.Context, id uuid.UUID, delta int64) error
	StorageUsed(ctx context.Context, id uuid.UUID) (int64, error)
	RecomputeStorage(ctx context.Context, id uuid.UUID) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type OrphanStore interface {
	Record(ctx context.Context, orphan *models.OrphanBlob) error
	ListPending(ctx context.Context, limit int) ([]models.OrphanBlob, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BlobStore holds file content. Calls may fail independently of metadata state.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (models.BlobRef, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Transactor runs fn in a single store transaction carried by the context.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
