package http

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/case-admin-backend/internal/file"
	"github.com/nekogravitycat/case-admin-backend/internal/logger"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/request"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
}

func NewHandler(fileService file.Service) *Handler {
	return &Handler{
		fileService: fileService,
	}
}

// stream copies body to the client. size is sent as Content-Length when known
// (non-negative).
func (h *Handler) stream(c *gin.Context, body io.ReadCloser, contentType, filename string, size int64) {
	defer body.Close()

	c.Header("Content-Type", contentType)
	if size >= 0 {
		c.Header("Content-Length", strconv.FormatInt(size, 10))
	}
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	c.Header("Cache-Control", "private, max-age=3600")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		// Headers are already out; nothing left but logging.
		logger.FromContext(c.Request.Context()).Warn().Err(err).Msg("file stream interrupted")
	}
}

// ServeFile streams the file content by ID.
func (h *Handler) ServeFile(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid file id")
		return
	}

	body, f, err := h.fileService.Download(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, body, f.ContentType, f.Filename, f.Size)
}

// ServeThumbnail streams the JPEG thumbnail of a file.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid file id")
		return
	}

	body, f, err := h.fileService.DownloadThumbnail(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, body, "image/jpeg", f.ID+"_thumb.jpg", -1)
}
