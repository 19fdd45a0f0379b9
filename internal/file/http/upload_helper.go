package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/case-admin-backend/internal/file"
	"github.com/nekogravitycat/case-admin-backend/internal/logger"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/response"
)

// FileUploadConfig defines the configuration for generic file uploads
type FileUploadConfig struct {
	FormFieldName string                                         // The name of the form field containing the file (default: "file")
	OwnerID       string                                         // The user the file belongs to
	MaxSizeBytes  int64                                          // The maximum file size in bytes (0 = no limit)
	AllowedTypes  []string                                       // The list of allowed MIME types (empty = allow all)
	ResizeImage   bool                                           // If true, validates file is an image and resizes to 1000x1000 max in .jpg format
	AfterUpload   func(ctx context.Context, fileID string) error // Called after successful file upload (optional)
}

// ImageTypes are the MIME types accepted for profile images.
var ImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// HandleFileUpload is a generic reusable handler for file uploads.
// It handles file upload, optional after-upload hook, and rollback on hook failure.
func (h *Handler) HandleFileUpload(c *gin.Context, config FileUploadConfig) {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	if config.MaxSizeBytes > 0 {
		// Leave room for the multipart envelope around the file part.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxSizeBytes+1<<20)
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, file.ErrFileTooLarge)
			return
		}
		response.Message(c, http.StatusBadRequest, fieldName+" is required")
		return
	}

	ctx := c.Request.Context()

	f, err := h.fileService.Upload(ctx, file.UploadInput{
		FileHeader:   fileHeader,
		UserID:       config.OwnerID,
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
		ResizeImage:  config.ResizeImage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// After upload hook (e.g., update entity reference)
	if config.AfterUpload != nil {
		if err := config.AfterUpload(ctx, f.ID); err != nil {
			if delErr := h.fileService.Delete(ctx, f.ID); delErr != nil {
				logger.FromContext(ctx).Warn().Err(delErr).Str("file_id", f.ID).Msg("upload rollback failed")
			}
			response.Error(c, err)
			return
		}
	}

	var thumbURL *string
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		thumbURL = &t
	}

	c.JSON(http.StatusOK, FileUploadResponse{
		Message:      "file uploaded successfully",
		FileID:       f.ID,
		URL:          file.FileURL(f.ID),
		ThumbnailURL: thumbURL,
	})
}
