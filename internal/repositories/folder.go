package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/models"
)

// FolderRepository stores folders. Every query is scoped to an owner.
type FolderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

// whereParent filters on parent_id, treating nil as the owner's root.
func whereParent(q *gorm.DB, parentID *uuid.UUID) *gorm.DB {
	if parentID == nil {
		return q.Where("parent_id IS NULL")
	}
	return q.Where("parent_id = ?", *parentID)
}

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	return translate(conn(ctx, r.db).Create(folder).Error)
}

func (r *FolderRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	err := conn(ctx, r.db).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&folder).Error
	if err != nil {
		return nil, translate(err)
	}
	return &folder, nil
}

// SiblingExists reports whether another folder under parentID already uses name.
// excludeID is ignored when it is uuid.Nil.
func (r *FolderRepository) SiblingExists(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	q := conn(ctx, r.db).Model(&models.Folder{}).
		Where("owner_id = ? AND name = ?", ownerID, name)
	q = whereParent(q, parentID)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

// ListChildren returns the direct subfolders of parentID, newest first.
func (r *FolderRepository) ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]models.Folder, error) {
	folders := []models.Folder{}
	q := whereParent(conn(ctx, r.db).Where("owner_id = ?", ownerID), parentID)
	if err := q.Order("created_at DESC").Find(&folders).Error; err != nil {
		return nil, translate(err)
	}
	return folders, nil
}

func (r *FolderRepository) HasChildren(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&models.Folder{}).
		Where("owner_id = ? AND parent_id = ?", ownerID, id).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (r *FolderRepository) Rename(ctx context.Context, ownerID, id uuid.UUID, name string) error {
	res := conn(ctx, r.db).Model(&models.Folder{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("name", name)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a single folder row. It reports false if nothing matched and
// a Conflict if the folder still has children or files.
func (r *FolderRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	res := conn(ctx, r.db).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Folder{})
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return false, fmt.Errorf("%w: folder %s is not empty", domain.ErrConflict, id)
		}
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
