// Package drive implements the folder hierarchy: folder and file lifecycle,
// cascading deletes and the storage counters that follow them.
package drive

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/cloudvault/internal/models"
)

const (
	defaultBlobTimeout  = 10 * time.Second
	defaultPresignTTL   = 15 * time.Minute
	defaultMaxTreeDepth = 256
)

// ErrTreeTooDeep is returned, wrapped in domain.ErrValidation, when a delete
// walks deeper than Options.MaxTreeDepth.
var ErrTreeTooDeep = errors.New("folder tree exceeds maximum depth")

type Options struct {
	BlobTimeout    time.Duration // bound on each delete/presign call to the blob store
	PresignTTL     time.Duration
	MaxTreeDepth   int
	MaxUploadBytes int64 // 0 means unlimited
}

type Deps struct {
	Folders FolderStore
	Files   FileStore
	Users   UserStore
	Orphans OrphanStore
	Blobs   BlobStore
	Tx      Transactor
}

// Manager runs every folder and file operation on behalf of one owner at a time.
// It holds no state between calls and is safe for concurrent use.
type Manager struct {
	folders FolderStore
	files   FileStore
	orphans OrphanStore
	blobs   BlobStore
	tx      Transactor
	quota   *Quota
	opts    Options
	logger  *slog.Logger
}

func NewManager(deps Deps, opts Options, logger *slog.Logger) *Manager {
	if opts.BlobTimeout <= 0 {
		opts.BlobTimeout = defaultBlobTimeout
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = defaultPresignTTL
	}
	if opts.MaxTreeDepth <= 0 {
		opts.MaxTreeDepth = defaultMaxTreeDepth
	}
	return &Manager{
		folders: deps.Folders,
		files:   deps.Files,
		orphans: deps.Orphans,
		blobs:   deps.Blobs,
		tx:      deps.Tx,
		quota:   NewQuota(deps.Users, logger),
		opts:    opts,
		logger:  logger,
	}
}

func (m *Manager) Quota() *Quota {
	return m.quota
}

// BlobFailure is a blob that could not be deleted although its metadata was.
type BlobFailure struct {
	FileID uuid.UUID `json:"fileId"`
	BlobID string    `json:"blobId"`
	Error  string    `json:"error"`
}

// DeleteReport summarises a delete. BlobFailures are warnings, not errors.
type DeleteReport struct {
	FoldersDeleted int           `json:"foldersDeleted"`
	FilesDeleted   int           `json:"filesDeleted"`
	BytesReleased  int64         `json:"bytesReleased"`
	BlobFailures   []BlobFailure `json:"blobFailures,omitempty"`
}

// deleteBlob makes one bounded attempt at removing a blob.
func (m *Manager) deleteBlob(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, m.opts.BlobTimeout)
	defer cancel()
	return m.blobs.Delete(ctx, key)
}

// recordOrphan remembers a blob whose delete failed so the reconciler can retry it.
func (m *Manager) recordOrphan(ctx context.Context, file *models.File, cause error) {
	err := m.orphans.Record(ctx, &models.OrphanBlob{
		BlobID:    file.BlobID,
		OwnerID:   file.OwnerID,
		FileID:    file.ID,
		LastError: cause.Error(),
	})
	if err != nil {
		m.logger.Error("failed to record orphaned blob",
			"blob_id", file.BlobID,
			"file_id", file.ID,
			"error", err,
		)
	}
}
