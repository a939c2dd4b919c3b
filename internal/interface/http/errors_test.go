package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-board/internal/domain/apperr"
)

func TestStatusOf(t *testing.T) {
	cases := map[apperr.Kind]int{
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
		apperr.KindInternal:             http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusOf(kind), kind.String())
	}
}

func render(t *testing.T, err error) (*httptest.ResponseRecorder, *logtest.Hook, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, hook := logtest.NewNullLogger()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Set("request_id", "rid-1")
	writeError(c, logger, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, hook, body
}

func TestWriteError_InternalIsLoggedNotLeaked(t *testing.T) {
	cause := errors.New("pq: connection refused to 10.0.0.3")
	w, hook, body := render(t, apperr.Persistence("insert board", cause))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", body["message"])
	assert.NotContains(t, w.Body.String(), "10.0.0.3")

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "rid-1", entry.Data["request_id"])
	assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), cause)
}

func TestWriteError_ClientKinds(t *testing.T) {
	w, hook, body := render(t, apperr.Wrap(apperr.KindInvalidCredentials, "user missing", errors.New("no rows")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ID or password incorrect", body["message"])
	assert.Empty(t, hook.Entries)

	w, _, body = render(t, apperr.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperr.ErrForbidden.Msg, body["message"])
	assert.Equal(t, "forbidden", body["error"].(map[string]any)["code"])
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="a%20b.txt"; filename*=UTF-8''a%20b.txt`, contentDisposition("attachment", "a b.txt"))
	assert.Equal(t, `inline; filename="%22x%22%3B.png"; filename*=UTF-8''%22x%22%3B.png`, contentDisposition("inline", `"x";.png`))
}

func TestInlineImageType(t *testing.T) {
	ct, ok := inlineImageType("image/png")
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)

	for _, stored := range []string{"text/html; charset=utf-8", "image/svg+xml", "application/pdf", "", "garbage/"} {
		_, ok := inlineImageType(stored)
		assert.False(t, ok, stored)
	}
}
