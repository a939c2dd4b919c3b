package handlers

import (
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/internal/application"
	"github.com/oksasatya/go-ddd-board/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-board/pkg/response"
)

type FileHandler struct {
	Files     *application.FileService
	Logger    *logrus.Logger
	MaxUpload int64
}

func NewFileHandler(files *application.FileService, logger *logrus.Logger, maxUpload int64) *FileHandler {
	return &FileHandler{Files: files, Logger: logger, MaxUpload: maxUpload}
}

// Download streams an attachment as a generic binary.
func (h *FileHandler) Download(c *gin.Context) {
	h.serve(c, "attachment", false)
}

// ImageDownload serves an editor image inline with its stored type.
// Anything that is not a raster image falls back to a binary attachment.
func (h *FileHandler) ImageDownload(c *gin.Context) {
	h.serve(c, "inline", true)
}

func (h *FileHandler) serve(c *gin.Context, disposition string, storedType bool) {
	fileID, err := strconv.ParseInt(c.Query("fileId"), 10, 64)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"fileId": "must be a number"})
		return
	}
	d, err := h.Files.Open(c.Request.Context(), fileID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer d.Body.Close()

	contentType := "application/octet-stream"
	if storedType {
		if ct, ok := inlineImageType(d.Attachment.ContentType); ok {
			contentType = ct
		} else {
			disposition = "attachment"
		}
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.DataFromReader(http.StatusOK, d.Attachment.Size, contentType, d.Body, map[string]string{
		"Content-Disposition": contentDisposition(disposition, d.Attachment.DisplayName),
	})
}

// inlineImageType reports whether a stored type may be rendered inline.
// SVG is excluded since it can carry script.
func inlineImageType(stored string) (string, bool) {
	mt, _, err := mime.ParseMediaType(stored)
	if err != nil || !strings.HasPrefix(mt, "image/") || mt == "image/svg+xml" {
		return "", false
	}
	return mt, true
}

// contentDisposition carries the display name percent-encoded in both the
// plain and the RFC 5987 extended parameter.
func contentDisposition(kind, name string) string {
	enc := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return kind + "; filename=\"" + enc + "\"; filename*=UTF-8''" + enc
}

func (h *FileHandler) ImageUpload(c *gin.Context) {
	limitBody(c, h.MaxUpload)
	payloads, err := formPayloads(c)
	if err != nil {
		badPayload(c, err)
		return
	}
	if len(payloads) == 0 {
		// a bare "file" part is accepted as well
		if fh, ferr := c.FormFile("file"); ferr == nil && fh.Size > 0 {
			payloads = append(payloads, headerPayload(fh))
		}
	}
	res, err := h.Files.UploadImage(c.Request.Context(), middleware.IdentityFrom(c), payloads)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "image uploaded", nil)
}
