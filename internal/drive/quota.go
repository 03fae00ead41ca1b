package drive

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rohits-web03/cloudvault/internal/domain"
)

// Quota keeps each user's storage counter in step with the bytes they store.
// It runs synchronously inside the operation that moves the bytes.
type Quota struct {
	users  UserStore
	logger *slog.Logger
}

func NewQuota(users UserStore, logger *slog.Logger) *Quota {
	return &Quota{users: users, logger: logger}
}

func (q *Quota) OnUpload(ctx context.Context, ownerID uuid.UUID, size int64) error {
	if err := checkSize(size); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	return q.users.AdjustStorage(ctx, ownerID, size)
}

// OnDelete releases size bytes. The store clamps the counter at zero, so a
// double-counted delete can never drive it negative. A missing owner row is
// logged and ignored: it must not keep a file from being deleted.
func (q *Quota) OnDelete(ctx context.Context, ownerID uuid.UUID, size int64) error {
	if err := checkSize(size); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	err := q.users.AdjustStorage(ctx, ownerID, -size)
	if errors.Is(err, domain.ErrNotFound) {
		q.logger.Warn("storage release for unknown owner", "owner_id", ownerID, "size", size)
		return nil
	}
	return err
}

func (q *Quota) Usage(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return q.users.StorageUsed(ctx, ownerID)
}
