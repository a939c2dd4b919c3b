package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-board/internal/application"
	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
	"github.com/oksasatya/go-ddd-board/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-board/pkg/helpers"
	"github.com/oksasatya/go-ddd-board/pkg/response"
)

type UserHandler struct {
	Users   *application.UserService
	Auth    *application.AuthService
	Tokens  *helpers.SessionTokenManager
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(users *application.UserService, auth *application.AuthService, tokens *helpers.SessionTokenManager, logger *logrus.Logger, cookies *helpers.Manager) *UserHandler {
	return &UserHandler{Users: users, Auth: auth, Tokens: tokens, Logger: logger, Cookies: cookies}
}

type userIDRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type loginRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userView struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	Birthdate string    `json:"birthdate,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserView(u *entity.User) userView {
	return userView{
		UserID:    u.UserID,
		Email:     u.Email,
		Birthdate: u.Birthdate,
		Gender:    u.Gender,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (h *UserHandler) CheckUserID(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	exists, err := h.Users.CheckUserID(c.Request.Context(), req.UserID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exists": exists}, "user id checked", nil)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req application.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Users.Register(c.Request.Context(), req); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "registration successful", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), middleware.SessionIDFrom(c), req.UserID, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	token, exp, err := h.Tokens.Sign(sess.Identity.UserID, sess.ID)
	if err != nil {
		_ = h.Auth.Logout(c.Request.Context(), sess.ID)
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetSession(c, token, exp)
	response.Success(c, http.StatusOK, sess.Identity, "login successful", gin.H{"expiresAt": sess.ExpiresAt})
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), middleware.SessionIDFrom(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

func (h *UserHandler) View(c *gin.Context) {
	u, err := h.Users.Profile(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "ok", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req application.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	if err := h.Users.Update(c.Request.Context(), middleware.IdentityFrom(c), req); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "profile updated", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	var req userIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	id := middleware.IdentityFrom(c)
	if err := h.Users.Delete(c.Request.Context(), id, req.UserID); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if id.UserID == req.UserID {
		h.Cookies.Clear(c)
	}
	response.Success[any](c, http.StatusOK, nil, "account deleted", nil)
}
