package files

import (
	"context"

	"filekeeper/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, f *domain.StoredFile) error
	GetByIDAndOwner(ctx context.Context, id string, ownerID int64) (*domain.StoredFile, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.StoredFile, error)
	Delete(ctx context.Context, id string, ownerID int64) error
}
