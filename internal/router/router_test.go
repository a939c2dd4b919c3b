package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-board/config"
	"github.com/oksasatya/go-ddd-board/internal/infrastructure/blob"
	"github.com/oksasatya/go-ddd-board/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-board/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-board/pkg/helpers"
	"github.com/oksasatya/go-ddd-board/pkg/mailer"
	"github.com/oksasatya/go-ddd-board/pkg/validation"
)

const cookieName = "BOARD_SESSION"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type jobSink struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (s *jobSink) PublishJSON(_ context.Context, body any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := body.(mailer.EmailJob); ok {
		s.jobs = append(s.jobs, job)
	}
	return nil
}

func (s *jobSink) templates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Template)
	}
	return out
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type server struct {
	t      *testing.T
	engine *gin.Engine
	jobs   *jobSink
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()
	logger, _ := logtest.NewNullLogger()

	cfg := &config.Config{
		AppName:             "Board",
		APIBaseURL:          "http://board.test",
		SessionTTL:          30 * time.Minute,
		SessionCookieName:   cookieName,
		MaxUploadBytes:      1 << 20,
		LoginRateLimit:      100,
		DebugMetricsEnabled: true,
	}
	jobs := &jobSink{}
	d := Deps{
		Cfg:      cfg,
		Logger:   logger,
		Store:    memory.NewStore(),
		Sessions: memory.NewSessionStore(),
		Blobs:    blob.NewFSStore(afero.NewMemMapFs()),
		Hasher:   helpers.NewBcryptHasher(bcrypt.MinCost),
		Tokens:   helpers.NewSessionTokenManager("test-secret", cfg.SessionTTL),
		Jobs:     jobs,
	}

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	reg := NewRegistry(r)
	InitModules(reg, d)
	reg.RegisterAll()
	return &server{t: t, engine: r, jobs: jobs}
}

func (s *server) do(req *http.Request, cookie string) *httptest.ResponseRecorder {
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *server) postJSON(path string, body any, cookie string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	b, err := json.Marshal(body)
	require.NoError(s.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req, cookie)
	return w, decode(s.t, w)
}

type part struct {
	name string
	data []byte
}

func (s *server) postForm(path string, fields map[string]string, files []part, cookie string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f.name)
		require.NoError(s.t, err)
		_, err = fw.Write(f.data)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := s.do(req, cookie)
	return w, decode(s.t, w)
}

func (s *server) get(path, cookie string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return env
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			return c.Value
		}
	}
	t.Fatalf("no %s cookie in response", cookieName)
	return ""
}

func (s *server) login(userID, password string) string {
	s.t.Helper()
	w, env := s.postJSON("/api/user/login.do", map[string]string{"userId": userID, "password": password}, "")
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	require.True(s.t, env.Success)
	return sessionCookie(s.t, w)
}

func dataField[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestBoardScenario(t *testing.T) {
	s := newServer(t)

	// registration
	w, env := s.postJSON("/api/user/register.do", map[string]string{"userId": "alice", "password": "pw123", "email": "alice@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = s.postJSON("/api/user/register.do", map[string]string{"userId": "bob", "password": "pw123"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.postJSON("/api/user/register.do", map[string]string{"userId": "alice", "password": "pw123"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)

	w, env = s.postJSON("/api/user/checkUserId.do", map[string]string{"userId": "alice"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, dataField[map[string]bool](t, env)["exists"])

	// credential failures look alike
	w, env = s.postJSON("/api/user/login.do", map[string]string{"userId": "alice", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ID or password incorrect", env.Message)
	w, env2 := s.postJSON("/api/user/login.do", map[string]string{"userId": "carol", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, env.Message, env2.Message)

	alice := s.login("alice", "pw123")
	bob := s.login("bob", "pw123")

	// alice posts with two attachments
	w, env = s.postForm("/api/board/create.do", map[string]string{"title": "hello", "content": "first"},
		[]part{{"a.txt", []byte("alpha")}, {"b.txt", []byte("bravo")}}, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	boardID := int64(dataField[map[string]float64](t, env)["boardId"])
	require.NotZero(t, boardID)
	bid := strconv.FormatInt(boardID, 10)

	w = s.get("/api/board/view.do?boardId="+bid, "")
	require.Equal(t, http.StatusOK, w.Code)
	view := dataField[struct {
		Title     string `json:"title"`
		CreatedBy string `json:"createdBy"`
		Files     []struct {
			FileID int64  `json:"fileId"`
			Name   string `json:"name"`
		} `json:"files"`
	}](t, decode(t, w))
	assert.Equal(t, "hello", view.Title)
	assert.Equal(t, "alice", view.CreatedBy)
	require.Len(t, view.Files, 2)
	assert.Equal(t, "a.txt", view.Files[0].Name)
	assert.Less(t, view.Files[0].FileID, view.Files[1].FileID)

	w = s.get("/api/file/down.do?fileId="+strconv.FormatInt(view.Files[1].FileID, 10), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bravo", w.Body.String())
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="b.txt"; filename*=UTF-8''b.txt`, w.Header().Get("Content-Disposition"))

	// bob may not touch alice's post
	w, env = s.postForm("/api/board/update.do", map[string]string{"boardId": bid, "title": "pwned"}, nil, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)
	w, _ = s.postJSON("/api/board/delete.do", map[string]int64{"boardId": boardID}, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// bob comments; alice is notified
	w, env = s.postJSON("/api/board/comment/create.do", map[string]any{"boardId": boardID, "content": "nice"}, bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	commentID := int64(dataField[map[string]any](t, env)["commentId"].(float64))
	assert.Contains(t, s.jobs.templates(), "comment_notification")

	w, _ = s.postJSON("/api/board/comment/update.do", map[string]any{"commentId": commentID, "content": "edited"}, alice)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.postJSON("/api/board/comment/update.do", map[string]any{"commentId": commentID, "content": "edited"}, bob)
	assert.Equal(t, http.StatusOK, w.Code)

	// alice edits her own post, dropping one file and adding another
	w, _ = s.postForm("/api/board/update.do",
		map[string]string{"boardId": bid, "title": "hello again", "removeFileIds": strconv.FormatInt(view.Files[0].FileID, 10)},
		[]part{{"c.txt", []byte("charlie")}}, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.get("/api/board/view.do?boardId="+bid, "")
	updated := dataField[struct {
		Title string `json:"title"`
		Files []struct {
			Name string `json:"name"`
		} `json:"files"`
	}](t, decode(t, w))
	assert.Equal(t, "hello again", updated.Title)
	require.Len(t, updated.Files, 2)
	assert.Equal(t, "b.txt", updated.Files[0].Name)
	assert.Equal(t, "c.txt", updated.Files[1].Name)

	// logout ends the session for the same cookie
	w, _ = s.postJSON("/api/user/logout.do", map[string]string{}, alice)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.postForm("/api/board/update.do", map[string]string{"boardId": bid, "title": "after logout"}, nil, alice)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.postJSON("/api/user/view.do", map[string]string{}, alice)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	alice = s.login("alice", "pw123")
	w, _ = s.postJSON("/api/board/delete.do", map[string]int64{"boardId": boardID}, alice)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.get("/api/board/view.do?boardId="+bid, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// bob deletes his account; his cookie is dead afterwards
	w, _ = s.postJSON("/api/user/delete.do", map[string]string{"userId": "alice"}, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.postJSON("/api/user/delete.do", map[string]string{"userId": "bob"}, bob)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.postJSON("/api/user/view.do", map[string]string{}, bob)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.postJSON("/api/user/login.do", map[string]string{"userId": "bob", "password": "pw123"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newServer(t)
	w, env := s.postJSON("/api/user/register.do", map[string]string{"userId": "a!", "password": "pw", "gender": "X"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := map[string]string{}
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Contains(t, details, "userId")
	assert.Contains(t, details, "password")
	assert.Contains(t, details, "gender")
}

func TestProfileView(t *testing.T) {
	s := newServer(t)
	w, _ := s.postJSON("/api/user/register.do", map[string]string{"userId": "alice", "password": "pw123", "email": "alice@example.com", "gender": "F"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	alice := s.login("alice", "pw123")

	w, env := s.postJSON("/api/user/view.do", map[string]string{}, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), "$2a$")
	profile := dataField[map[string]any](t, env)
	assert.Equal(t, "alice", profile["userId"])
	assert.Equal(t, "F", profile["gender"])

	w, _ = s.postJSON("/api/user/update.do", map[string]string{"userId": "alice", "password": "newpw1", "email": "a2@example.com"}, alice)
	require.Equal(t, http.StatusOK, w.Code)
	s.login("alice", "newpw1")
}

func TestImageUploadAndInlineDownload(t *testing.T) {
	s := newServer(t)

	w, _ := s.postForm("/api/file/imgUpload.do", nil, []part{{"dot.png", pngBytes}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.postJSON("/api/user/register.do", map[string]string{"userId": "alice", "password": "pw123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	alice := s.login("alice", "pw123")

	w, env := s.postForm("/api/file/imgUpload.do", nil, nil, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, env = s.postForm("/api/file/imgUpload.do", nil, []part{{"점.png", pngBytes}}, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	url := dataField[map[string]any](t, env)["url"].(string)
	require.True(t, strings.HasPrefix(url, "http://board.test/api/file/imgDown.do?fileId="), url)

	w = s.get(strings.TrimPrefix(url, "http://board.test"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, w.Body.Bytes())
	assert.Equal(t, `inline; filename="%EC%A0%90.png"; filename*=UTF-8''%EC%A0%90.png`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = s.get("/api/file/down.do?fileId=999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.get("/api/file/down.do?fileId=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageDownloadNeverRendersMarkup(t *testing.T) {
	s := newServer(t)
	w, _ := s.postJSON("/api/user/register.do", map[string]string{"userId": "mallory", "password": "pw123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	mallory := s.login("mallory", "pw123")

	page := []byte("<html><body><script>fetch('/api/user/delete.do')</script></body></html>")
	fetch := func(name string) *httptest.ResponseRecorder {
		w, env := s.postForm("/api/file/imgUpload.do", nil, []part{{name, page}}, mallory)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		url := dataField[map[string]any](t, env)["url"].(string)
		w = s.get(strings.TrimPrefix(url, "http://board.test"), "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		return w
	}

	// the declared extension wins over the sniffed markup
	w = fetch("cat.png")
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "inline;"))

	for _, name := range []string{"page.html", "logo.svg"} {
		w = fetch(name)
		assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"), name)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"), name)
	}
}

func TestDebugVars(t *testing.T) {
	s := newServer(t)
	w := s.get("/api/debug/vars", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "board_login_success_total")
}

func TestUnknownRoutesUseEnvelope(t *testing.T) {
	s := newServer(t)

	w := s.get("/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "route not found", decode(t, w).Message)

	w = s.get("/api/board/create.do", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
