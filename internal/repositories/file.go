package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rohits-web03/cloudvault/internal/models"
)

// FileRepository stores file metadata. Every query is scoped to an owner.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func whereFolder(q *gorm.DB, folderID *uuid.UUID) *gorm.DB {
	if folderID == nil {
		return q.Where("folder_id IS NULL")
	}
	return q.Where("folder_id = ?", *folderID)
}

func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	return translate(conn(ctx, r.db).Create(file).Error)
}

func (r *FileRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.File, error) {
	var file models.File
	err := conn(ctx, r.db).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&file).Error
	if err != nil {
		return nil, translate(err)
	}
	return &file, nil
}

// ListInFolder returns the files directly inside folderID, newest first.
func (r *FileRepository) ListInFolder(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]models.File, error) {
	files := []models.File{}
	q := whereFolder(conn(ctx, r.db).Where("owner_id = ?", ownerID), folderID)
	if err := q.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, translate(err)
	}
	return files, nil
}

func (r *FileRepository) CountInFolder(ctx context.Context, ownerID, folderID uuid.UUID) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.File{}).
		Where("owner_id = ? AND folder_id = ?", ownerID, folderID).
		Count(&n).Error
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// Delete removes a single file row. It reports false if nothing matched.
func (r *FileRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	res := conn(ctx, r.db).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.File{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
