package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder is a node of a project hierarchy (an asset, a shot, a sequence...).
type Folder struct {
	ID          string         `gorm:"primaryKey;size:36"              json:"id"`
	ProjectName string         `gorm:"index;size:64;not null"          json:"projectName"`
	Name        string         `gorm:"size:255;not null"               json:"name"`
	Label       string         `gorm:"size:255"                        json:"label,omitempty"`
	FolderType  string         `gorm:"index;size:64;not null"          json:"folderType"`
	ParentID    *string        `gorm:"size:36"                         json:"parentId"`
	Path        string         `gorm:"size:1024"                       json:"path"`
	Status      string         `gorm:"size:64"                         json:"status"`
	Attrib      map[string]any `gorm:"serializer:json"                 json:"attrib"`
	Data        map[string]any `gorm:"serializer:json"                 json:"data,omitempty"`
	Active      bool           `gorm:"default:true"                    json:"active"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// BeforeCreate assigns a new id to folders created without one.
func (f *Folder) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}

	return nil
}
