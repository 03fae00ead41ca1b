package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrphanBlob is a remote object whose metadata row is gone but whose delete failed.
type OrphanBlob struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	BlobID    string    `json:"blobId" gorm:"uniqueIndex;not null"`
	OwnerID   uuid.UUID `json:"ownerId" gorm:"type:uuid;not null;index"`
	FileID    uuid.UUID `json:"fileId" gorm:"type:uuid;not null"` // uuid.Nil if the upload never committed a row
	LastError string    `json:"lastError"`
	Attempts  int       `json:"attempts" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (o *OrphanBlob) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
