package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"elog-backend/internal/domains/attachment/model"
	"elog-backend/internal/domains/attachment/service"
	"elog-backend/internal/shared/response"
)

const maxUploadSize = 100 << 20 // 100 MiB

type AttachmentHandler struct {
	attachmentService service.AttachmentService
}

func NewAttachmentHandler(attachmentService service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
	}
}

func mapAttachmentError(err error) (int, string) {
	var attachmentErr *model.AttachmentError
	code := "INTERNAL_ERROR"
	if errors.As(err, &attachmentErr) {
		code = attachmentErr.Code
	}

	switch {
	case errors.Is(err, model.ErrAttachmentNotFound):
		return http.StatusNotFound, code
	case errors.Is(err, model.ErrPreviewNotReady):
		return http.StatusNotFound, code
	case errors.Is(err, model.ErrUploadFailed):
		return http.StatusInternalServerError, code
	default:
		return http.StatusInternalServerError, code
	}
}

// Upload stores a new attachment
// POST /api/v1/attachments
func (h *AttachmentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("uploadFile")
	if err != nil {
		response.BadRequest(c, "the uploadFile form field is mandatory")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.BadRequest(c, "the file exceeds the upload size limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalServerError(c, "failed to read the uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.InternalServerError(c, "failed to read the uploaded file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id, err := h.attachmentService.Create(c.Request.Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		statusCode, errCode := mapAttachmentError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"id": id})
}

// Get returns the metadata of an attachment
// GET /api/v1/attachments/:id
func (h *AttachmentHandler) Get(c *gin.Context) {
	attachment, err := h.attachmentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		statusCode, errCode := mapAttachmentError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}
	response.Success(c, http.StatusOK, attachment)
}

// Download streams the original file
// GET /api/v1/attachments/:id/download
func (h *AttachmentHandler) Download(c *gin.Context) {
	content, err := h.attachmentService.GetContent(c.Request.Context(), c.Param("id"))
	if err != nil {
		statusCode, errCode := mapAttachmentError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+content.FileName+`"`)
	c.Data(http.StatusOK, content.ContentType, content.Data)
}

// Preview streams the generated preview image
// GET /api/v1/attachments/:id/preview.jpg
func (h *AttachmentHandler) Preview(c *gin.Context) {
	content, err := h.attachmentService.GetPreview(c.Request.Context(), c.Param("id"))
	if err != nil {
		statusCode, errCode := mapAttachmentError(err)
		response.ErrorResponse(c, statusCode, errCode, err.Error())
		return
	}
	c.Data(http.StatusOK, content.ContentType, content.Data)
}
