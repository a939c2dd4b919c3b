package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-board/pkg/response"
	"github.com/oksasatya/go-ddd-board/pkg/validation"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindInvalidCredentials:   http.StatusUnauthorized,
	apperr.KindUnauthenticated:      http.StatusUnauthorized,
	apperr.KindForbidden:            http.StatusForbidden,
	apperr.KindDuplicateIdentity:    http.StatusConflict,
	apperr.KindNoFilesProvided:      http.StatusBadRequest,
	apperr.KindStorageWriteFailed:   http.StatusInternalServerError,
	apperr.KindMetadataCommitFailed: http.StatusInternalServerError,
	apperr.KindPersistence:          http.StatusInternalServerError,
	apperr.KindNotFound:             http.StatusNotFound,
	apperr.KindValidation:           http.StatusBadRequest,
}

func statusOf(kind apperr.Kind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// writeError renders an application error. Server-side failures are logged
// in full and reach the client as a generic message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := apperr.KindOf(err)
	status := statusOf(kind)

	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"kind":       kind.String(),
			"path":       c.FullPath(),
		}).Error("request failed")
		response.Error[any](c, status, "internal error", gin.H{"code": kind.String()})
		return
	}

	var details any = gin.H{"code": kind.String()}
	if kind == apperr.KindValidation {
		details = validation.ToDetails(err)
	}
	response.Error[any](c, status, publicMessage(err), details)
}

// publicMessage is the message of the outermost kind-carrying error,
// without the wrapped cause.
func publicMessage(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidCredentials:
		return apperr.ErrInvalidCredentials.Msg
	case apperr.KindValidation:
		return apperr.ErrValidation.Msg
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "request failed"
}

func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
