package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"catalog-backend/internal/domains/entity/model"
	"catalog-backend/internal/domains/entity/service"
	"catalog-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxUploadBytes caps workbook uploads at 10MB.
const maxUploadBytes = 10 << 20

type BulkImportHandler struct {
	service service.BulkImportServiceInterface
}

func NewBulkImportHandler(service service.BulkImportServiceInterface) *BulkImportHandler {
	return &BulkImportHandler{service: service}
}

// Preview - POST /v1/catalog/import/preview
// Validates the uploaded workbook without importing anything, so the
// caller can show errors and warnings first.
func (h *BulkImportHandler) Preview(c *gin.Context) {
	data, req, ok := h.readUpload(c)
	if !ok {
		return
	}

	report, err := h.service.Preview(c.Request.Context(), data, req.SelectedType)
	if err != nil {
		if errors.Is(err, model.ErrWorkbookParse) {
			response.BadRequest(c, err.Error())
			return
		}
		log.Error().Err(err).Msg("Import preview failed")
		response.InternalServerError(c, "import preview failed")
		return
	}

	response.Success(c, http.StatusOK, previewBody(report))
}

// Import - POST /v1/catalog/import
// mode=async stashes the file and returns a job for polling; the default
// runs the import synchronously and returns report + result.
func (h *BulkImportHandler) Import(c *gin.Context) {
	data, req, ok := h.readUpload(c)
	if !ok {
		return
	}

	if req.Mode == "async" {
		file, _ := c.FormFile("file")
		job, err := h.service.ImportAsync(c.Request.Context(), file.Filename, data, req.SelectedType)
		if err != nil {
			log.Error().Err(err).Msg("Failed to enqueue import")
			response.InternalServerError(c, "failed to enqueue import")
			return
		}
		response.Success(c, http.StatusAccepted, job)
		return
	}

	report, result, err := h.service.Import(c.Request.Context(), data, req.SelectedType, nil)
	if err != nil {
		if errors.Is(err, model.ErrWorkbookParse) {
			response.BadRequest(c, err.Error())
			return
		}
		log.Error().Err(err).Msg("Import failed")
		response.InternalServerError(c, "import failed")
		return
	}

	body := previewBody(report)
	body["result"] = result
	response.Success(c, http.StatusOK, body)
}

// JobStatus - GET /v1/catalog/import/jobs/:id
func (h *BulkImportHandler) JobStatus(c *gin.Context) {
	job, err := h.service.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrJobNotFound) {
			response.NotFound(c, "import job not found")
			return
		}
		log.Error().Err(err).Msg("Failed to load import job")
		response.InternalServerError(c, "failed to load import job")
		return
	}
	response.Success(c, http.StatusOK, job)
}

func (h *BulkImportHandler) readUpload(c *gin.Context) ([]byte, model.ImportRequest, bool) {
	var req model.ImportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid form data")
		return nil, req, false
	}
	// mode/type may arrive as query params instead of form fields.
	if req.Mode == "" {
		req.Mode = c.Query("mode")
	}
	if req.SelectedType == "" {
		req.SelectedType = c.Query("type")
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return nil, req, false
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required (multipart/form-data)")
		return nil, req, false
	}
	if file.Size > maxUploadBytes {
		response.BadRequest(c, "file exceeds 10MB limit")
		return nil, req, false
	}

	data, err := readFile(file)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		response.InternalServerError(c, "failed to read uploaded file")
		return nil, req, false
	}
	return data, req, true
}

func readFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

func previewBody(report *model.ImportReport) gin.H {
	return gin.H{
		"total_rows": report.TotalRows,
		"skipped":    report.Skipped,
		"creates":    len(report.Creates),
		"updates":    len(report.Updates),
		"errors":     report.Errors,
		"warnings":   report.Warnings,
	}
}
