package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/vizboard-backend/internal/http/response"
	"github.com/yungbote/vizboard-backend/internal/services"
)

type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// POST /api/files/upload
func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer src.Close()

	file, err := h.files.Upload(c.Request.Context(), fileHeader.Filename, src)
	if err != nil {
		response.RespondServiceError(c, "upload_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"file": file})
}

// GET /api/files
func (h *FileHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	files, err := h.files.List(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, "list_files_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"files": files})
}

// GET /api/files/:id
func (h *FileHandler) Get(c *gin.Context) {
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file_id", err)
		return
	}
	file, err := h.files.Get(c.Request.Context(), fileID)
	if err != nil {
		response.RespondServiceError(c, "file_not_found", err)
		return
	}
	response.RespondOK(c, gin.H{"file": file})
}

// DELETE /api/files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file_id", err)
		return
	}
	if err := h.files.Delete(c.Request.Context(), fileID); err != nil {
		response.RespondServiceError(c, "delete_file_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": fileID})
}
