package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"filekeeper/internal/domain"
)

const (
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50 MB
	DefaultBaseDir     = "./uploads"
)

// Service stores file bytes on local disk and the ownership metadata
// in the database. Bytes are keyed by a generated id, never by the
// uploaded filename, so uploads by different users cannot clobber each
// other.
type Service struct {
	repo    Repository
	baseDir string
	maxSize int64
}

func NewService(repo Repository, baseDir string, maxSize int64) *Service {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Service{repo: repo, baseDir: baseDir, maxSize: maxSize}
}

// Upload writes the bytes to disk first and creates the record only
// after the write succeeded. A record-create failure removes the bytes
// again so neither side is left orphaned.
func (s *Service) Upload(ctx context.Context, ownerID int64, fileHeader *multipart.FileHeader) (*domain.StoredFile, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		// Sniff from the first 512 bytes when the client sent nothing
		buf := make([]byte, 512)
		n, _ := file.Read(buf)
		contentType = strings.Split(http.DetectContentType(buf[:n]), ";")[0]
		if seeker, ok := file.(io.Seeker); ok {
			_, _ = seeker.Seek(0, io.SeekStart)
		}
	}

	now := time.Now()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(s.baseDir, relDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	id := uuid.New().String()
	ext := filepath.Ext(fileHeader.Filename)
	filename := fmt.Sprintf("%s_%s%s", id, sanitizeName(fileHeader.Filename), ext)

	absPath := filepath.Join(absDir, filename)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	relPath := filepath.Join(relDir, filename)
	record := &domain.StoredFile{
		ID:          id,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		StoragePath: relPath,
		Size:        fileHeader.Size,
		UploadedBy:  ownerID,
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		_ = os.Remove(absPath) // rollback bytes on DB error
		return nil, fmt.Errorf("failed to save file record: %w", err)
	}

	return record, nil
}

// List returns the owner's records, newest first.
func (s *Service) List(ctx context.Context, ownerID int64) ([]*domain.StoredFile, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID int64, id string) (*domain.StoredFile, error) {
	record, err := s.repo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return record, nil
}

// Download resolves the record and the absolute on-disk path. A record
// whose bytes have gone missing reports the same ErrFileNotFound as an
// absent record.
func (s *Service) Download(ctx context.Context, ownerID int64, id string) (*domain.StoredFile, string, error) {
	record, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, "", err
	}

	absPath := filepath.Join(s.baseDir, record.StoragePath)
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrFileNotFound
		}
		return nil, "", err
	}

	return record, absPath, nil
}

// Delete removes the bytes and then the record. Already-missing bytes
// are tolerated; an unexpected removal error is logged and the record
// is deleted anyway, since a dangling record is worse than a stray
// blob a sweep can reclaim.
func (s *Service) Delete(ctx context.Context, ownerID int64, id string) error {
	record, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	absPath := filepath.Join(s.baseDir, record.StoragePath)
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		log.Printf("files/delete: removing %s failed: %v", record.StoragePath, err)
	}

	return s.repo.Delete(ctx, id, ownerID)
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "file"
	}
	return name
}
