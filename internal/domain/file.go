package domain

import "time"

// StoredFile is a file owned by a single user. The ID doubles as the
// storage key on disk, so two users uploading the same display name
// never collide.
type StoredFile struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Filename    string    `gorm:"column:filename;not null" json:"filename"`
	ContentType string    `gorm:"column:content_type" json:"content_type"`
	StoragePath string    `gorm:"column:storage_path;not null" json:"-"` // relative to the upload root
	Size        int64     `gorm:"column:size" json:"size"`
	UploadedBy  int64     `gorm:"column:uploaded_by;not null;index" json:"uploaded_by"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (StoredFile) TableName() string { return "files" }
