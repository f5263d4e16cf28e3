package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carecbt/exam-service/internal/services"
	"github.com/carecbt/exam-service/internal/utils"
)

// Uploads above this size are rejected before parsing
const maxImportSize = 20 << 20 // 20 MiB

type AdminHandler struct {
	BaseHandler
	importService services.ImportService
}

func NewAdminHandler(importService services.ImportService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:   NewBaseHandler(logger),
		importService: importService,
	}
}

// PreviewImport parses an uploaded question file without persisting
// @Summary Preview question import
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX question file"
// @Success 200 {object} services.ImportPreviewResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /admin/import/preview [post]
func (h *AdminHandler) PreviewImport(c *gin.Context) {
	file, header, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	h.LogRequest(c, "Previewing import", "filename", header.Filename, "size", header.Size)

	preview, err := h.importService.Preview(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// CommitImport applies an uploaded question file to an exam
// @Summary Commit question import
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX question file"
// @Param exam_id formData uint true "Target exam ID"
// @Success 201 {object} services.ImportCommitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/import/commit [post]
func (h *AdminHandler) CommitImport(c *gin.Context) {
	examID, err := strconv.ParseUint(c.PostForm("exam_id"), 10, 32)
	if err != nil || examID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_parameter",
			Message: "exam_id must be a positive integer",
		})
		return
	}

	file, header, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	h.LogRequest(c, "Committing import",
		"exam_id", examID,
		"filename", header.Filename,
		"size", header.Size)

	result, err := h.importService.Commit(c.Request.Context(), uint(examID), header.Filename, file, adminActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *AdminHandler) openUpload(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "multipart field 'file' is required",
		})
		return nil, nil, false
	}
	if header.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "file_too_large",
			Message: "upload exceeds the size limit",
		})
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "failed to open uploaded file",
		})
		return nil, nil, false
	}

	return file, header, true
}

func adminActor(c *gin.Context) string {
	if actor := c.GetHeader("X-Admin-Actor"); actor != "" {
		return actor
	}
	return "admin"
}
