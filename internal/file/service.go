package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/case-admin-backend/internal/logger"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/storage"
)

const (
	maxImageSide     = 1000
	thumbnailSide    = 200
	thumbnailSuffix  = "_thumb.jpg"
	resizedExtension = ".jpg"
)

// UploadInput describes one upload and the rules it must satisfy.
type UploadInput struct {
	FileHeader   *multipart.FileHeader
	UserID       string
	MaxSizeBytes int64    // 0 = no limit
	AllowedTypes []string // sniffed MIME types, empty = any
	ResizeImage  bool     // re-encode as JPEG bounded by 1000x1000
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
	now     func() time.Time
}

func NewService(repo Repository, store storage.Storage) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
		now:     time.Now,
	}
}

func (s *service) readUpload(in UploadInput) ([]byte, error) {
	if in.MaxSizeBytes > 0 && in.FileHeader.Size > in.MaxSizeBytes {
		return nil, ErrFileTooLarge
	}

	src, err := in.FileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	var r io.Reader = src
	if in.MaxSizeBytes > 0 {
		r = io.LimitReader(src, in.MaxSizeBytes+1)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if in.MaxSizeBytes > 0 && int64(len(content)) > in.MaxSizeBytes {
		return nil, ErrFileTooLarge
	}
	return content, nil
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	content, err := s.readUpload(in)
	if err != nil {
		return nil, err
	}

	// The declared Content-Type is client input; trust the bytes instead.
	contentType := http.DetectContentType(content)
	if len(in.AllowedTypes) > 0 && !slices.Contains(in.AllowedTypes, contentType) {
		return nil, ErrUnsupportedType
	}

	filename := filepath.Base(in.FileHeader.Filename)
	ext := strings.ToLower(filepath.Ext(filename))

	if in.ResizeImage {
		resized, err := s.imgProc.Resize(bytes.NewReader(content), maxImageSide, maxImageSide)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidImage) {
				return nil, ErrInvalidImage
			}
			return nil, err
		}
		content = resized.Bytes()
		contentType = "image/jpeg"
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + resizedExtension
		ext = resizedExtension
	}

	fileID := uuid.NewString()

	// Sharding path: upload/ab/UUID.ext
	shard := fileID[:2]
	storagePath := fmt.Sprintf("upload/%s/%s%s", shard, fileID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	var thumbnailPath *string
	if strings.HasPrefix(contentType, "image/") {
		thumb, err := s.imgProc.GenerateThumbnail(bytes.NewReader(content), thumbnailSide, thumbnailSide)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("file_id", fileID).Msg("thumbnail generation failed")
		} else {
			tPath := fmt.Sprintf("upload/%s/%s%s", shard, fileID, thumbnailSuffix)
			if err := s.storage.Save(ctx, tPath, thumb); err != nil {
				logger.FromContext(ctx).Warn().Err(err).Str("file_id", fileID).Msg("thumbnail save failed")
			} else {
				thumbnailPath = &tPath
			}
		}
	}

	f := &File{
		ID:            fileID,
		UserID:        in.UserID,
		Filename:      filename,
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(content)),
		CreatedAt:     s.now().UTC(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.removeObjects(ctx, f)
		return nil, err
	}

	logger.FromContext(ctx).Info().Str("file_id", f.ID).Str("user_id", f.UserID).Int64("size", f.Size).Msg("file uploaded")
	return f, nil
}

// removeObjects deletes the stored objects of f, best effort.
func (s *service) removeObjects(ctx context.Context, f *File) {
	log := logger.FromContext(ctx)
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		log.Warn().Err(err).Str("path", f.StoragePath).Msg("failed to remove stored file")
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			log.Warn().Err(err).Str("path", *f.ThumbnailPath).Msg("failed to remove stored thumbnail")
		}
	}
}

func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.removeObjects(ctx, f)
	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) open(ctx context.Context, path string) (io.ReadCloser, error) {
	stream, err := s.storage.Get(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}
	return stream, nil
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.open(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if f.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.open(ctx, *f.ThumbnailPath)
	if err != nil {
		return nil, nil, err
	}
	return stream, f, nil
}
