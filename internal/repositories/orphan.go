package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohits-web03/cloudvault/internal/models"
)

// OrphanBlobRepository tracks remote objects left behind by failed deletes.
type OrphanBlobRepository struct {
	db *gorm.DB
}

func NewOrphanBlobRepository(db *gorm.DB) *OrphanBlobRepository {
	return &OrphanBlobRepository{db: db}
}

// Record inserts the orphan, or bumps its attempt count if the blob is already tracked.
func (r *OrphanBlobRepository) Record(ctx context.Context, orphan *models.OrphanBlob) error {
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "blob_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_error": orphan.LastError,
			"attempts":   gorm.Expr("orphan_blobs.attempts + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(orphan).Error
	return translate(err)
}

// ListPending returns the least recently attempted orphans first.
func (r *OrphanBlobRepository) ListPending(ctx context.Context, limit int) ([]models.OrphanBlob, error) {
	orphans := []models.OrphanBlob{}
	err := conn(ctx, r.db).Order("updated_at ASC").Limit(limit).Find(&orphans).Error
	if err != nil {
		return nil, translate(err)
	}
	return orphans, nil
}

func (r *OrphanBlobRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	err := conn(ctx, r.db).Model(&models.OrphanBlob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error": reason,
			"attempts":   gorm.Expr("attempts + 1"),
		}).Error
	return translate(err)
}

func (r *OrphanBlobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(conn(ctx, r.db).Where("id = ?", id).Delete(&models.OrphanBlob{}).Error)
}
