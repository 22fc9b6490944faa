package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// FileHandler handles upload and download endpoints.
type FileHandler struct {
	fileService    *service.FileService
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService *service.FileService, maxUploadBytes int64, log zerolog.Logger) *FileHandler {
	return &FileHandler{
		fileService:    fileService,
		maxUploadBytes: maxUploadBytes,
		log:            log.With().Str("component", "file_handler").Logger(),
	}
}

// Upload godoc
// POST /api/v1/files/upload
// Streams multipart field "file" to the EduSync file store.
func (h *FileHandler) Upload(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	file, header, ok := formFile(c, h.maxUploadBytes)
	if !ok {
		return
	}
	defer file.Close()

	up, err := h.fileService.Upload(c.Request.Context(), sc, header.Filename, file)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, up)
}

// Download godoc
// GET /api/v1/files/download/*blob
// Proxies the stored file as an attachment.
func (h *FileHandler) Download(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	blob := strings.TrimPrefix(c.Param("blob"), "/")
	if blob == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	dl, err := h.fileService.Download(c.Request.Context(), sc, blob)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := dl.ContentDisposition
	if disposition == "" {
		disposition = `attachment; filename="` + blobBase(blob) + `"`
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", disposition)
	if dl.ContentLength >= 0 {
		c.Header("Content-Length", strconv.FormatInt(dl.ContentLength, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, dl.Body); err != nil {
		h.log.Warn().Err(err).Str("blob", blob).Msg("Download stream interrupted")
	}
}

// formFile reads multipart field "file", enforcing the upload limit.
func formFile(c *gin.Context, maxBytes int64) (multipart.File, *multipart.FileHeader, bool) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return nil, nil, false
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return nil, nil, false
	}
	return file, header, true
}

func blobBase(blob string) string {
	if i := strings.LastIndex(blob, "/"); i >= 0 {
		return blob[i+1:]
	}
	return blob
}
