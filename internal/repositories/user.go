package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rohits-web03/cloudvault/internal/domain"
	"github.com/rohits-web03/cloudvault/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return translate(conn(ctx, r.db).Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// AdjustStorage adds delta to storage_used, clamping the result at zero.
func (r *UserRepository) AdjustStorage(ctx context.Context, id uuid.UUID, delta int64) error {
	res := conn(ctx, r.db).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("storage_used",
			gorm.Expr("CASE WHEN storage_used + ? < 0 THEN 0 ELSE storage_used + ? END", delta, delta))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) StorageUsed(ctx context.Context, id uuid.UUID) (int64, error) {
	var row struct{ StorageUsed int64 }
	err := conn(ctx, r.db).Model(&models.User{}).
		Where("id = ?", id).
		Select("storage_used").
		Take(&row).Error
	if err != nil {
		return 0, translate(err)
	}
	return row.StorageUsed, nil
}

// RecomputeStorage resets storage_used to the sum of the user's file sizes in
// one statement, so concurrent uploads are never lost.
func (r *UserRepository) RecomputeStorage(ctx context.Context, id uuid.UUID) error {
	res := conn(ctx, r.db).Exec(`UPDATE users SET storage_used =
		(SELECT COALESCE(SUM(files.size), 0) FROM files WHERE files.owner_id = users.id)
		WHERE id = ?`, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if err := conn(ctx, r.db).Model(&models.User{}).Pluck("id", &ids).Error; err != nil {
		return nil, translate(err)
	}
	return ids, nil
}
