package repository

import (
	"context"

	"gorm.io/gorm"

	"filekeeper/internal/domain"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, f *domain.StoredFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

// GetByIDAndOwner scopes the lookup to the owner in the query itself,
// so a record owned by someone else is indistinguishable from one that
// does not exist.
func (r *FileRepository) GetByIDAndOwner(ctx context.Context, id string, ownerID int64) (*domain.StoredFile, error) {
	var f domain.StoredFile
	tx := r.db.WithContext(ctx).
		Where("id = ? AND uploaded_by = ?", id, ownerID).
		First(&f)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &f, nil
}

func (r *FileRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.StoredFile, error) {
	var files []*domain.StoredFile
	tx := r.db.WithContext(ctx).
		Where("uploaded_by = ?", ownerID).
		Order("created_at DESC").
		Find(&files)
	return files, tx.Error
}

func (r *FileRepository) Delete(ctx context.Context, id string, ownerID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND uploaded_by = ?", id, ownerID).
		Delete(&domain.StoredFile{}).Error
}
