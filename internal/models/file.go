package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type File struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string     `json:"name" gorm:"not null"`
	OriginalName string     `json:"originalName" gorm:"not null"`
	BlobID       string     `json:"-" gorm:"uniqueIndex;not null"` // object key in the bucket
	BlobLocation string     `json:"-" gorm:"not null"`
	MimeType     string     `json:"mimeType" gorm:"not null"`
	Size         int64      `json:"size" gorm:"not null"` // bytes
	FolderID     *uuid.UUID `json:"folderId" gorm:"type:uuid;index:idx_files_owner_folder,priority:2"`
	OwnerID      uuid.UUID  `json:"ownerId" gorm:"type:uuid;not null;index:idx_files_owner_folder,priority:1"`
	Path         string     `json:"path" gorm:"not null;default:'/'"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`

	Folder *Folder `json:"-" gorm:"foreignKey:FolderID;constraint:OnDelete:RESTRICT"`
}

func (f *File) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
