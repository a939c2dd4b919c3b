package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/internal/application"
	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-board/pkg/response"
)

type BoardHandler struct {
	Boards    *application.BoardService
	Logger    *logrus.Logger
	MaxUpload int64
}

func NewBoardHandler(boards *application.BoardService, logger *logrus.Logger, maxUpload int64) *BoardHandler {
	return &BoardHandler{Boards: boards, Logger: logger, MaxUpload: maxUpload}
}

type boardIDRequest struct {
	BoardID int64 `json:"boardId" form:"boardId" binding:"required"`
}

// boardForm arrives as multipart form fields next to the "files" parts.
type boardForm struct {
	BoardID       int64   `form:"boardId" json:"boardId"`
	Title         string  `form:"title" json:"title"`
	Content       string  `form:"content" json:"content"`
	RemoveFileIDs []int64 `form:"removeFileIds" json:"removeFileIds"`
}

func (f boardForm) input() application.BoardInput {
	return application.BoardInput{ID: f.BoardID, Title: f.Title, Content: f.Content, RemoveFileIDs: f.RemoveFileIDs}
}

type commentRequest struct {
	CommentID int64  `json:"commentId"`
	BoardID   int64  `json:"boardId"`
	Content   string `json:"content"`
}

type boardView struct {
	BoardID   int64      `json:"boardId"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedBy string     `json:"createdBy"`
	UpdatedBy string     `json:"updatedBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Files     []fileView `json:"files"`
}

type fileView struct {
	FileID      int64  `json:"fileId"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

type commentView struct {
	CommentID int64     `json:"commentId"`
	BoardID   int64     `json:"boardId"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func toBoardView(d *application.BoardDetail) boardView {
	files := make([]fileView, 0, len(d.Files))
	for _, a := range d.Files {
		files = append(files, fileView{
			FileID:      a.ID,
			Name:        a.DisplayName,
			ContentType: a.ContentType,
			Size:        a.Size,
			URL:         "/api/file/down.do?fileId=" + strconv.FormatInt(a.ID, 10),
		})
	}
	b := d.Board
	return boardView{
		BoardID:   b.ID,
		Title:     b.Title,
		Content:   b.Content,
		CreatedBy: b.CreatedBy,
		UpdatedBy: b.UpdatedBy,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Files:     files,
	}
}

func toCommentView(c *entity.Comment) commentView {
	return commentView{CommentID: c.ID, BoardID: c.BoardID, Content: c.Content, CreatedBy: c.CreatedBy, CreatedAt: c.CreatedAt}
}

// View accepts the id as a query parameter (links in notification emails)
// or in a JSON body.
func (h *BoardHandler) View(c *gin.Context) {
	var req boardIDRequest
	if q := c.Query("boardId"); q != "" {
		id, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"boardId": "must be a number"})
			return
		}
		req.BoardID = id
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	d, err := h.Boards.Get(c.Request.Context(), req.BoardID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toBoardView(d), "ok", nil)
}

func (h *BoardHandler) Create(c *gin.Context) {
	limitBody(c, h.MaxUpload)
	var form boardForm
	if err := c.ShouldBind(&form); err != nil {
		badPayload(c, err)
		return
	}
	payloads, err := formPayloads(c)
	if err != nil {
		badPayload(c, err)
		return
	}
	b, err := h.Boards.Create(c.Request.Context(), middleware.IdentityFrom(c), form.input(), payloads)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"boardId": b.ID}, "post created", nil)
}

func (h *BoardHandler) Update(c *gin.Context) {
	limitBody(c, h.MaxUpload)
	var form boardForm
	if err := c.ShouldBind(&form); err != nil {
		badPayload(c, err)
		return
	}
	payloads, err := formPayloads(c)
	if err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Boards.Update(c.Request.Context(), middleware.IdentityFrom(c), form.input(), payloads); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "post updated", nil)
}

func (h *BoardHandler) Delete(c *gin.Context) {
	var req boardIDRequest
	if err := c.ShouldBind(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Boards.Delete(c.Request.Context(), middleware.IdentityFrom(c), req.BoardID); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "post deleted", nil)
}

func (h *BoardHandler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	cm, err := h.Boards.CreateComment(c.Request.Context(), middleware.IdentityFrom(c), application.CommentInput{BoardID: req.BoardID, Content: req.Content})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCommentView(cm), "comment created", nil)
}

func (h *BoardHandler) UpdateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	in := application.CommentInput{ID: req.CommentID, BoardID: req.BoardID, Content: req.Content}
	if err := h.Boards.UpdateComment(c.Request.Context(), middleware.IdentityFrom(c), in); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "comment updated", nil)
}

func (h *BoardHandler) DeleteComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Boards.DeleteComment(c.Request.Context(), middleware.IdentityFrom(c), req.CommentID); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "comment deleted", nil)
}
