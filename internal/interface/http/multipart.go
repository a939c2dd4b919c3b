package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-board/internal/application"
)

const filesField = "files"

// limitBody caps the request body before any form parsing.
func limitBody(c *gin.Context, max int64) {
	if max > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
	}
}

// formPayloads turns the "files" parts into upload payloads, skipping empty
// parts that browsers send when no file was chosen. A non-multipart request
// has no payloads.
func formPayloads(c *gin.Context) ([]application.Payload, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	headers := form.File[filesField]
	out := make([]application.Payload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size == 0 {
			continue
		}
		out = append(out, headerPayload(fh))
	}
	return out, nil
}

func headerPayload(fh *multipart.FileHeader) application.Payload {
	return application.Payload{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}
