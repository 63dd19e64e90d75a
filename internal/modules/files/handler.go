package files

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"filekeeper/internal/pkg/response"
)

// Handler handles HTTP requests for per-user file storage. Every route
// requires authentication; ownership is enforced by the service.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	filesGroup := protected.Group("/files")
	{
		filesGroup.POST("", h.Upload)
		filesGroup.GET("", h.List)
		filesGroup.GET("/:id", h.Get)
		filesGroup.GET("/:id/download", h.Download)
		filesGroup.DELETE("/:id", h.Delete)
	}
}

// Upload godoc
// @Summary Upload a file
// @Description Stores the file for the current user and returns its metadata.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,413,500 {object} map[string]interface{}
// @Router /files [post]
func (h *Handler) Upload(c *gin.Context) {
	ownerID := mustUserID(c)
	if ownerID == 0 {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "No file provided")
		return
	}

	record, err := h.service.Upload(c.Request.Context(), ownerID, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFile):
			response.Error(c, http.StatusBadRequest, "EMPTY_FILE", "File is empty")
		case errors.Is(err, ErrFileTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds maximum allowed size")
		default:
			response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to upload file")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"file":    record,
		"message": "File uploaded successfully",
	})
}

// List godoc
// @Summary List my files
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401,500 {object} map[string]interface{}
// @Router /files [get]
func (h *Handler) List(c *gin.Context) {
	ownerID := mustUserID(c)
	if ownerID == 0 {
		return
	}

	records, err := h.service.List(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list files")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"files": records,
	})
}

// Get godoc
// @Summary File metadata by id
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401,404,500 {object} map[string]interface{}
// @Router /files/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	ownerID := mustUserID(c)
	if ownerID == 0 {
		return
	}

	record, err := h.service.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "File not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "Failed to load file")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"file": record,
	})
}

// Download godoc
// @Summary Download file bytes
// @Description Streams the stored bytes with the original filename and content type.
// @Tags Files
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Failure 401,404,500 {object} map[string]interface{}
// @Router /files/{id}/download [get]
func (h *Handler) Download(c *gin.Context) {
	ownerID := mustUserID(c)
	if ownerID == 0 {
		return
	}

	record, absPath, err := h.service.Download(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "File not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", "Failed to download file")
		return
	}

	if record.ContentType != "" {
		c.Header("Content-Type", record.ContentType)
	}
	c.FileAttachment(absPath, record.Filename)
}

// Delete godoc
// @Summary Delete a file (bytes + record)
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401,404,500 {object} map[string]interface{}
// @Router /files/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	ownerID := mustUserID(c)
	if ownerID == 0 {
		return
	}

	if err := h.service.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "File not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete file")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "File deleted successfully",
	})
}

func mustUserID(c *gin.Context) int64 {
	id := c.GetInt64("user_id")
	if id == 0 {
		response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials or token")
	}
	return id
}
