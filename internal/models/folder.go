package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder is a node in an owner's folder forest. A nil ParentID is a root folder.
//
// Siblings are unique by name per owner: idx_folders_sibling_name covers nested
// folders and a partial index created at migration time covers root folders,
// since NULL parent ids never collide in a plain unique index.
type Folder struct {
	ID       uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string     `json:"name" gorm:"not null;uniqueIndex:idx_folders_sibling_name,priority:1"`
	ParentID *uuid.UUID `json:"parentId" gorm:"type:uuid;uniqueIndex:idx_folders_sibling_name,priority:2;index:idx_folders_owner_parent,priority:2"`
	OwnerID  uuid.UUID  `json:"ownerId" gorm:"type:uuid;not null;uniqueIndex:idx_folders_sibling_name,priority:3;index:idx_folders_owner_parent,priority:1"`
	// Display only. Not kept in sync on rename.
	Path      string    `json:"path" gorm:"not null;default:'/'"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// The store refuses a child whose parent is gone and a parent that still has children.
	Parent *Folder `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT"`
}

func (f *Folder) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
